// Package steprunner hosts the fault-isolating pipeline orchestrator for
// workstation setup steps. It exposes the `Step` contract plus the `Runner`
// so the CLI can execute an ordered pipeline once, record per-step outcomes,
// and summarize failures without ever aborting the run. Steps communicate
// severity through the discriminated `Outcome` value instead of raised
// signals, which keeps the orchestration testable with stub steps.
package steprunner
