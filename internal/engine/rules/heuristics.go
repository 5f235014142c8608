package rules

import "layerguard/internal/core/config"

// HeuristicRule adapts a Detector to the Rule contract for component files.
type HeuristicRule struct {
	id       string
	toggle   string
	detector Detector
}

func NewBusinessLogicRule() *HeuristicRule {
	return &HeuristicRule{id: IDBusinessLogic, toggle: config.ToggleBusinessLogic, detector: StructuralDetector{}}
}

func NewDataFetchingRule() *HeuristicRule {
	return &HeuristicRule{id: IDDataFetching, toggle: config.ToggleDataFetching, detector: TextualDetector{}}
}

func (r *HeuristicRule) Name() string { return r.id }

func (r *HeuristicRule) Description() string {
	d, _ := Describe(r.id)
	return d.Description
}

func (r *HeuristicRule) Execute(ctx *Context) Result {
	if !ctx.Config.Rules.Enabled(r.toggle) {
		return Result{}
	}
	components := ComponentFile(ctx)
	if len(components) == 0 {
		return Result{}
	}
	var res Result
	for _, d := range r.detector.Detect(ctx, components) {
		res.Violations = append(res.Violations, ctx.violation(d.Location, r.id, d.Message))
	}
	return res
}
