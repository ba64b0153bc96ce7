// Package sim wires the stencil engine together: a Stepper advances one
// partition of a grid by nano steps, and an Engine runs several
// partitions of a shared grid concurrently while a load balancer
// redistributes the work between them.
//
// # Reading Guide
//
// Start with these files:
//   - stepper.go: ghost exchange, update dispatch and grid swapping per nano step
//   - engine.go: slab partitioning and periodic rebalancing
//   - config.go: EngineConfig, the YAML description of a run
//
// # Architecture
//
// The building blocks live in sub-packages:
//   - sim/geometry/: coordinates, boxes, streaks, regions, topologies, stencils
//   - sim/storage/: GridBase and its dense, sparse and struct-of-arrays
//     implementations, member filters and selectors, patch providers
//   - sim/update/: UpdateFunctor and the concurrency backends
//   - sim/loadbalancer/: balancers and the tracing decorator
//   - sim/boxcell/: adapter from particles to grid cells
//   - sim/plotter/: palettes and cell plotting
//   - sim/models/: small cell models used by the CLI and tests
//   - sim/trace/: decision trace recording
//
// # Nano steps
//
// A grid at nano step n holds the state after n updates. Ghost providers
// must have data for nano step n before Step can compute n+1 from it, and
// accepters are offered every generation right after it is computed.
package sim
