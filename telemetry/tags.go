package telemetry

import "github.com/insightwire/insightwire-go/contracts"

// resolveTags builds the tag map for one envelope. Precedence is strict:
// context defaults first, per-call overrides on top, and only the three
// operation keys are filled from the ambient operation when they are still
// unset or empty. Inputs are never mutated.
func resolveTags(ctx *Context, overrides map[string]string, op *Operation) map[string]string {
	tags := make(map[string]string)
	if ctx != nil {
		for k, v := range ctx.Tags {
			tags[k] = v
		}
	}
	for k, v := range overrides {
		tags[k] = v
	}
	if op != nil {
		fillTag(tags, contracts.OperationID, op.ID)
		fillTag(tags, contracts.OperationName, op.Name)
		fillTag(tags, contracts.OperationParentID, op.ParentID)
	}
	return tags
}

// fillTag sets key to value only when the map holds no usable value for it. An
// empty override still counts as unset.
func fillTag(tags map[string]string, key, value string) {
	if value == "" {
		return
	}
	if tags[key] == "" {
		tags[key] = value
	}
}
