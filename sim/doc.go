// Package sim provides the core discrete-event simulation engine for
// flowgrid: a network of energy-flow components (sources, loads,
// converters, storages, multiplexers, limiters) coupled port-to-port and
// driven forward by a super-dense-time event queue.
//
// # Reading Guide
//
// Start with these files to understand the simulation kernel:
//   - devs.go: Time, PortValue, port-id constants and the component/port/stream enums
//   - port.go: the (requested, achieved) update semantics every atomic model builds on
//   - flowlimits.go, converter.go, storage.go, load.go, supply.go, onoffswitch.go,
//     mux.go, mover.go: the nine atomic models, each implementing ta/deltaInt/deltaExt/
//     deltaConf/output
//   - network.go: builds a coupled network from a connection list, applying
//     fragility and reliability overlays
//   - simulator.go: the event loop that drives the coupled network to quiescence
//   - flowwriter.go: records per-port time series as the run progresses
//   - stats.go, metrics.go, scenario.go: derive per-component and per-stream
//     statistics from a run's flow writer output, across one or many
//     fragility-sampled occurrences of the same scenario
//
// # Architecture
//
// sim is the entire core: it has no I/O and no dependency on TOML, CSV,
// Graphviz, or CLI concerns. Those live in cmd/ as thin adapters that feed
// sim a Scenario built from the parsed configuration and consume sim's
// FlowWriter output.
//
// RNG is injected (see rng.go): the core never reaches for a global
// random source, so a fixed seed reproduces a run bit-for-bit.
package sim
