package workflow

import (
	"github.com/ashureev/outing-planner/internal/domain"
)

// Node identifies one step of the planning workflow.
type Node string

const (
	NodeAnalyzeInput          Node = "analyze_input"
	NodeAskActivityPreference Node = "ask_activity_preference"
	NodeDiscoverActivity      Node = "discover_activity"
	NodeAskFoodPreference     Node = "ask_food_preference"
	NodeDiscoverDining        Node = "discover_dining"
	NodeDiscoverCafe          Node = "discover_cafe"
	NodeDiscoverDrinking      Node = "discover_drinking"
	NodeGenerateItinerary     Node = "generate_itinerary"
	NodeAskRefinement         Node = "ask_refinement"
	NodeValidateQuality       Node = "validate_quality"
	NodeEnd                   Node = "end"
)

// Route is the branch a node took.
type Route string

const (
	RouteNext          Route = "next"
	RouteNeedsActivity Route = "needs_activity_preference"
	RouteHasActivity   Route = "has_activity_preference"
	RouteNeedsFood     Route = "needs_food_preference"
	RouteHasFood       Route = "has_food_preference"
	RouteRefineRegion  Route = Route(domain.ActionRefineRegion)
	RouteRefinePlace   Route = Route(domain.ActionRefinePlace)
	RouteRefineFood    Route = Route(domain.ActionRefineFood)
	RouteRefineCafe    Route = Route(domain.ActionRefineCafe)
	RouteComplete      Route = Route(domain.ActionComplete)
)

type edge struct {
	from  Node
	route Route
}

var transitions = map[edge]Node{
	{NodeAnalyzeInput, RouteHasFood}:       NodeDiscoverDining,
	{NodeAnalyzeInput, RouteNeedsFood}:     NodeAskFoodPreference,
	{NodeAnalyzeInput, RouteHasActivity}:   NodeDiscoverActivity,
	{NodeAnalyzeInput, RouteNeedsActivity}: NodeAskActivityPreference,

	{NodeAskActivityPreference, RouteNext}: NodeDiscoverActivity,

	{NodeDiscoverActivity, RouteHasFood}:   NodeDiscoverDining,
	{NodeDiscoverActivity, RouteNeedsFood}: NodeAskFoodPreference,

	{NodeAskFoodPreference, RouteNext}: NodeDiscoverDining,
	{NodeDiscoverDining, RouteNext}:    NodeDiscoverCafe,
	{NodeDiscoverCafe, RouteNext}:      NodeDiscoverDrinking,
	{NodeDiscoverDrinking, RouteNext}:  NodeGenerateItinerary,
	{NodeGenerateItinerary, RouteNext}: NodeAskRefinement,
	{NodeAskRefinement, RouteNext}:     NodeValidateQuality,

	{NodeValidateQuality, RouteRefineRegion}: NodeDiscoverActivity,
	{NodeValidateQuality, RouteRefinePlace}:  NodeDiscoverDining,
	{NodeValidateQuality, RouteRefineFood}:   NodeDiscoverDining,
	{NodeValidateQuality, RouteRefineCafe}:   NodeDiscoverCafe,
	{NodeValidateQuality, RouteComplete}:     NodeEnd,
}

// interruptAfter lists the nodes after which the workflow pauses for input.
var interruptAfter = map[Node]bool{
	NodeAskActivityPreference: true,
	NodeAskFoodPreference:     true,
	NodeAskRefinement:         true,
}

var prompts = map[Node]string{
	NodeAskActivityPreference: "What kind of activity would you like? (e.g. exhibition, hands-on, relaxing, shopping)",
	NodeAskFoodPreference:     "What kind of food do you prefer? (e.g. Korean, Western, Chinese, Japanese) Say 'any' and we'll pick for you.",
	NodeAskRefinement:         "Happy with this plan? Say 'done' to finish, or ask for changes like 'different cafe' or 'another restaurant'.",
}

func nextNode(from Node, route Route) (Node, bool) {
	n, ok := transitions[edge{from, route}]
	return n, ok
}

// Known reports whether n is a workflow node.
func Known(n Node) bool {
	if n == NodeEnd {
		return true
	}
	for e := range transitions {
		if e.from == n {
			return true
		}
	}
	return false
}

// Prompt returns the question asked at a checkpoint, or "" for other nodes.
func Prompt(n Node) string {
	return prompts[n]
}

func activityKnown(st *domain.SessionState) bool {
	if !st.Required(domain.StageActivity) {
		return true
	}
	if st.ActivityPreference != "" {
		return true
	}
	return st.Theme != nil && st.Theme.Theme != ""
}

func foodKnown(st *domain.SessionState) bool {
	return st.FoodPreference != "" || !st.Required(domain.StageDining)
}

func routeAfterAnalysis(st *domain.SessionState) Route {
	if st.InputKind == domain.InputSpecificPlace {
		if foodKnown(st) {
			return RouteHasFood
		}
		return RouteNeedsFood
	}
	if activityKnown(st) {
		return RouteHasActivity
	}
	return RouteNeedsActivity
}

func routeAfterActivity(st *domain.SessionState) Route {
	if foodKnown(st) {
		return RouteHasFood
	}
	return RouteNeedsFood
}

// routeAfterValidation maps a refinement action to its route. In
// specific-place mode a region replan keeps the fixed start and only
// replans from dining on.
func routeAfterValidation(st *domain.SessionState, action domain.Action) Route {
	if action == domain.ActionRefineRegion && st.InputKind == domain.InputSpecificPlace {
		return RouteRefinePlace
	}
	return Route(action)
}
