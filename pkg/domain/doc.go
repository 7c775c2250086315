/*
Package domain contains the core model of the clinical decision graph engine.

It defines the node variants, the immutable algorithm graph and the serializable
navigation state. The package is pure: it performs no I/O and holds no global state.

# Key Entities

  - Node: a sealed interface with three variants (Decision, Evaluator, Result).
    Every consumer dispatches through Visitor so a new variant fails to compile.
  - Algorithm: a validated graph with metadata, a default entry and optional Modes.
  - EvalContext: the read-only answer view passed to evaluator routes.
  - Remap: a declared mapping table that bridges answers between sub-flows.
  - State: the snapshot of a session (current node, history, answers).
*/
package domain
