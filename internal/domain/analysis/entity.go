package analysis

// Provider slot names in the aggregate response. The two implemented slots
// share one adapter parameterized by model; the rest are reserved.
const (
	SlotOpenAI = "openai"
	SlotGPT41  = "gpt4_1"
	SlotGemini = "gemini"
	SlotQwen   = "qwen"
	SlotLlama  = "llama"
)

// Request is one incoming analyze call. ImageURL is either an external URL
// or a data:image base64 reference; both pass through to the provider as-is.
type Request struct {
	ImageURL    string `json:"image_url"`
	Description string `json:"description,omitempty"`
}

// ModelResult is the normalized defect report extracted from one model reply.
// Fields default to empty rather than null; Error set means the rest of the
// payload is best-effort or empty.
type ModelResult struct {
	ImageUnderstanding string `json:"image_understanding"`
	DetectedDefects    string `json:"detected_defects"`
	RootCause          string `json:"root_cause"`
	Severity           string `json:"severity,omitempty"`
	Recommendations    string `json:"recommendations"`
	Confidence         string `json:"confidence,omitempty"`
	Error              string `json:"error,omitempty"`
}

// Response aggregates one result per provider slot plus per-slot elapsed
// seconds. Reserved slots stay nil and marshal as explicit nulls, which is
// distinct from an error result.
type Response struct {
	OpenAI  *ModelResult       `json:"openai"`
	GPT41   *ModelResult       `json:"gpt4_1"`
	Gemini  *ModelResult       `json:"gemini"`
	Qwen    *ModelResult       `json:"qwen"`
	Llama   *ModelResult       `json:"llama"`
	Runtime map[string]float64 `json:"runtime"`
}

// Results returns the slot map as stored in history, nulls included.
func (r *Response) Results() map[string]*ModelResult {
	return map[string]*ModelResult{
		SlotOpenAI: r.OpenAI,
		SlotGPT41:  r.GPT41,
		SlotGemini: r.Gemini,
		SlotQwen:   r.Qwen,
		SlotLlama:  r.Llama,
	}
}
