package lovelace

// Action kinds understood by the Lovelace frontend.
const (
	ActionNone          = "none"
	ActionToggle        = "toggle"
	ActionMoreInfo      = "more-info"
	ActionNavigate      = "navigate"
	ActionPerformAction = "perform-action"
)

// Target is a service call target.
type Target map[string]any

// EntityTarget targets a list of entities.
func EntityTarget(entityIDs ...string) Target {
	if entityIDs == nil {
		entityIDs = []string{}
	}
	return Target{"entity_id": entityIDs}
}

// AreaTarget targets every entity in the given areas.
func AreaTarget(areaIDs ...string) Target {
	if areaIDs == nil {
		areaIDs = []string{}
	}
	return Target{"area_id": areaIDs}
}

// NoAction disables a tap, hold or double tap.
func NoAction() map[string]any {
	return map[string]any{"action": ActionNone}
}

// Toggle toggles the card's entity.
func Toggle() map[string]any {
	return map[string]any{"action": ActionToggle}
}

// MoreInfo opens the entity dialog.
func MoreInfo() map[string]any {
	return map[string]any{"action": ActionMoreInfo}
}

// Navigate opens another view of the dashboard.
func Navigate(path string) map[string]any {
	return map[string]any{"action": ActionNavigate, "navigation_path": path}
}

// PerformAction calls a Home Assistant service (e.g. "light.turn_off").
func PerformAction(service string, target Target) map[string]any {
	action := map[string]any{
		"action":         ActionPerformAction,
		"perform_action": service,
	}
	if target != nil {
		action["target"] = map[string]any(target)
	}
	return action
}
