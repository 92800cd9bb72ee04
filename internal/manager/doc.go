// Package manager owns the AR session and the models loaded into it. It is
// structured into small files by concern:
//
//   - manager.go: core Manager type and simple getters.
//   - config.go: ManagerConfig and package defaults; NewWithConfig applies defaults.
//   - types.go: state enum, model sources and the internal model entry.
//   - errors.go: error kinds (Kind, *Error) and predicates (IsNotFound, ...).
//   - session.go: session state machine (Initialize, Start, Stop, Dispose).
//   - location.go: geolocation updates.
//   - capabilities.go: static capability descriptor.
//   - models.go: model registry (Load, Unload, Show, Hide, Place).
//   - inflight.go: session epochs and cancellation of in-flight runtime calls.
//   - status_report.go: Snapshot/Status reporting helpers.
//   - adapter_iface.go: the AR runtime boundary (RuntimeAdapter, RuntimeSession).
//   - adapter_sim.go: in-process simulated runtime used by default.
//   - events.go, eventpub_*.go: lifecycle event sinks (no-op, memory, zerolog).
//
// Session transitions and registry mutations share one mutex. Runtime calls
// that may block (model loading, anchor creation) run outside the lock and
// commit only if the session epoch did not change meanwhile; Stop and Dispose
// bump the epoch, so such calls fail with KindCancelled.
//
// External packages should use the exported methods only. Internal types are
// subject to change.
package manager
