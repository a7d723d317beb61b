package mqtt

// DefaultTopicPrefix roots the topics when the configuration leaves the
// prefix empty.
const DefaultTopicPrefix = "lovelace"

// Topics builds the generator's topic names under a prefix.
//
//	t := mqtt.Topics{Prefix: "lovelace"}
//	t.Dashboard() // "lovelace/dashboard"
type Topics struct {
	Prefix string
}

func (t Topics) root() string {
	if t.Prefix == "" {
		return DefaultTopicPrefix
	}
	return t.Prefix
}

// Status carries "online" or "offline", retained. The broker publishes
// "offline" as the last will.
func (t Topics) Status() string {
	return t.root() + "/status"
}

// Dashboard carries the latest generated dashboard, retained.
func (t Topics) Dashboard() string {
	return t.root() + "/dashboard"
}

// View carries one view of the latest dashboard, retained.
//
// Example: lovelace/dashboard/view/lights
func (t Topics) View(path string) string {
	return t.root() + "/dashboard/view/" + path
}

// Generation carries the summary of each run, not retained.
func (t Topics) Generation() string {
	return t.root() + "/generation"
}

// GenerateCommand triggers a new generation. The payload may be empty or a
// JSON object naming the requester.
func (t Topics) GenerateCommand() string {
	return t.root() + "/command/generate"
}
