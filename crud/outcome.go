package crud

// Kind discriminates orchestrator outcomes. KindRender is a real sentinel,
// not a redirect variant: callers must branch on it and supply the form view
// themselves.
type Kind int

const (
	KindRender Kind = iota
	KindRedirect
	KindForbidden
)

// Flash carries a one-shot user-facing message rendered on the next response.
type Flash struct {
	Level   string // "success" or "error"
	Message string
}

// Outcome is the orchestrator's return contract.
type Outcome struct {
	Kind     Kind
	Location string // redirect target when Kind is KindRedirect
	Flashes  []Flash
}

func render() Outcome {
	return Outcome{Kind: KindRender}
}

func forbidden() Outcome {
	return Outcome{Kind: KindForbidden}
}

func redirect(location string, flashes ...Flash) Outcome {
	return Outcome{Kind: KindRedirect, Location: location, Flashes: flashes}
}

// Success builds a success-level flash.
func Success(message string) Flash {
	return Flash{Level: "success", Message: message}
}

// Failure builds an error-level flash.
func Failure(message string) Flash {
	return Flash{Level: "error", Message: message}
}

func failures(messages []string) []Flash {
	flashes := make([]Flash, len(messages))
	for i, m := range messages {
		flashes[i] = Failure(m)
	}
	return flashes
}
