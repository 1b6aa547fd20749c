package jobgraph

// Event is a farm job state that dependencies and callbacks trigger on.
type Event string

const (
	EventComplete Event = "complete"
	EventFail     Event = "fail"
	EventKill     Event = "kill"
)

// Kind is the farm job type.
type Kind string

const (
	KindProcess Kind = "process"
	KindRender  Kind = "render"
)

// MailLanguage is the callback language the farm uses for notification mail.
const MailLanguage = "mail"

// Default host requirement tags.
const (
	PrepRequirement   = "host.capability=prep"
	RenderRequirement = "host.capability=render"
)

// Profile is the resource profile of a job.
type Profile struct {
	Priority     int      `json:"priority" yaml:"priority"`
	CPUs         int      `json:"cpus" yaml:"cpus"`
	Cluster      string   `json:"cluster,omitempty" yaml:"cluster,omitempty"`
	AllowLocal   bool     `json:"allow_local" yaml:"allow_local"`
	Requirements []string `json:"requirements,omitempty" yaml:"requirements,omitempty"`
}

// Dependency makes a job wait on another job reaching Event. Job names a node
// of the same graph by label; ExternalID names a job already on the farm.
type Dependency struct {
	Job        string `json:"job,omitempty" yaml:"job,omitempty"`
	ExternalID string `json:"external_id,omitempty" yaml:"external_id,omitempty"`
	Event      Event  `json:"event" yaml:"event"`
}

// Callback runs Code in Language when the job reaches Trigger.
type Callback struct {
	Trigger  Event  `json:"trigger" yaml:"trigger"`
	Language string `json:"language" yaml:"language"`
	Code     string `json:"code" yaml:"code"`
}

// Task is one agenda entry: a name and the frames it covers.
type Task struct {
	Name   string `json:"name" yaml:"name"`
	Frames string `json:"frames" yaml:"frames"`
}

// JobNode is a unit of farm work.
type JobNode struct {
	Label        string       `json:"label" yaml:"label"`
	Kind         Kind         `json:"kind" yaml:"kind"`
	Command      []string     `json:"command" yaml:"command"`
	Profile      Profile      `json:"profile" yaml:"profile"`
	MailAddress  string       `json:"mail,omitempty" yaml:"mail,omitempty"`
	Dependencies []Dependency `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	Callbacks    []Callback   `json:"callbacks,omitempty" yaml:"callbacks,omitempty"`
	Agenda       []Task       `json:"agenda,omitempty" yaml:"agenda,omitempty"`

	// ID is assigned by the scheduler at submission.
	ID string `json:"id,omitempty" yaml:"id,omitempty"`
}

// addMailCallbacks notifies on failure and completion, never on kill.
func (n *JobNode) addMailCallbacks() {
	for _, trigger := range []Event{EventFail, EventComplete} {
		n.Callbacks = append(n.Callbacks, Callback{Trigger: trigger, Language: MailLanguage})
	}
}
