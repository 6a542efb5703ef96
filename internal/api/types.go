package api

// WindowSpec is the wire form of a noise window.
type WindowSpec struct {
	Start int     `json:"start_noise_idx"`
	End   int     `json:"end_noise_idx"`
	Scale float64 `json:"noise_scale"`
}

// GenerateRequest drives a noise-injected generation call. Windows, when
// present, supplies one window per prompt and overrides the shared
// fields.
type GenerateRequest struct {
	Prompts       []string     `json:"prompts"`
	StartNoiseIdx int          `json:"start_noise_idx"`
	EndNoiseIdx   int          `json:"end_noise_idx"`
	NoiseScale    float64      `json:"noise_scale"`
	Windows       []WindowSpec `json:"windows,omitempty"`
	ExtraPrompt   string       `json:"extra_prompt,omitempty"`
	MaxNewTokens  int          `json:"max_new_tokens,omitempty"`
}

type GenerateResponse struct {
	ID      string   `json:"id"`
	Outputs []string `json:"outputs"`
}

type ScoreRequest struct {
	Prompts []string `json:"prompts"`
}

type ScoreResponse struct {
	ID    string      `json:"id"`
	Probs [][]float32 `json:"probs"`
}

// ChoicesRequest drives a replicated forward pass projected onto a
// candidate token set.
type ChoicesRequest struct {
	Prompt         string  `json:"prompt"`
	StartNoiseIdx  int     `json:"start_noise_idx"`
	EndNoiseIdx    int     `json:"end_noise_idx"`
	NoiseScale     float64 `json:"noise_scale"`
	NoiseLevel     int     `json:"noise_level"`
	AnswerTokenIDs []int   `json:"answer_token_ids"`
	NumCopies      int     `json:"num_copies,omitempty"`
	SubBatchSize   int     `json:"sub_batch_size,omitempty"`
}

type ChoicesResponse struct {
	ID      string      `json:"id"`
	Choices [][]float32 `json:"choices"`
}

type ResponseError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}
