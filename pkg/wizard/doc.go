// Package wizard drives the multi-step asset creation and edit flows.
//
// A Wizard holds one session: the basic asset attributes, the selected asset
// type and form, the values collected per stage and the current step. The
// step sequence is recomputed from a Plan every time it is needed, so
// selecting an asset type or a form immediately reshapes which steps Next
// and Back visit. Stage values are validated with the schema package before
// the step can be left, and Submit hands the merged payload to a
// store.AssetSink exactly once.
package wizard
