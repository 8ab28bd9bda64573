// Package world runs the particle simulation.
//
// A [World] owns the particle store, an ordered list of force fields, the
// bounding box and a [Spawner] that creates new particles at a fixed spawn
// point. Each call to [World.Update] advances every particle by one tick:
//
//  1. In parallel, each live particle goes through the force fields, is
//     integrated and then has the boundary policy applied.
//  2. After all workers finish, the tick counter advances. Once it passes
//     CompactEvery, dead particles are swept out and the counter resets.
//  3. Under the [RoundRobin] schedule, the active field advances.
//
// Dead particles stay in the store until the next sweep, so [World.Len]
// may exceed [World.Alive] by at most the deaths of one compaction window.
//
// # Thread Safety
//
// Update, CreateParticle and Clear must not run concurrently with each
// other. The frame driver is expected to call them from one goroutine;
// Update parallelizes internally and joins before returning.
package world
