package domain

// ChatTurn represents a single turn in a conversation
type ChatTurn struct {
	Role string `json:"role"` // user | assistant
	Text string `json:"text"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatRequest es una petición agnóstica de chat de un solo disparo
type ChatRequest struct {
	SystemPrompt string
	History      []ChatTurn
	UserText     string
	Model        string
	ChatKey      string // teléfono, solo para logs
}

// RunStatus es el estado que reporta la API de assistants para un run
type RunStatus string

const (
	RunQueued         RunStatus = "queued"
	RunInProgress     RunStatus = "in_progress"
	RunRequiresAction RunStatus = "requires_action"
	RunCancelling     RunStatus = "cancelling"
	RunCancelled      RunStatus = "cancelled"
	RunFailed         RunStatus = "failed"
	RunCompleted      RunStatus = "completed"
	RunIncomplete     RunStatus = "incomplete"
	RunExpired        RunStatus = "expired"
)

// RunParams ajusta la generación de un run
type RunParams struct {
	AssistantID string
	Temperature float64
	TopP        float64
}

// ThreadMessage es un mensaje leído de un thread
type ThreadMessage struct {
	ID   string
	Role string
	// Texts contiene los bloques de texto en orden; otros tipos se descartan
	Texts []string
}
