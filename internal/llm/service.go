package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	pkghttp "job-ingest/pkg/http"
)

type Provider string

const (
	ProviderOpenAI Provider = "openai"
	ProviderOllama Provider = "ollama"
	ProviderGroq   Provider = "groq"
	ProviderNone   Provider = "none"
)

// JobPosting is the structured payload returned by one structuring call.
// The orchestrator fills in id, file name, file type, upload date and status.
type JobPosting struct {
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Location     string   `json:"location"`
	JobType      string   `json:"jobType"`
	Category     string   `json:"category"`
	Skills       []string `json:"skills"`
	Description  string   `json:"description"`
	ClosingDate  string   `json:"closingDate,omitempty"`
	ContactEmail string   `json:"contactEmail,omitempty"`
	ContactPhone string   `json:"contactPhone,omitempty"`
}

// ServiceError means the structuring endpoint was unreachable or answered
// with a non-success status. It is never retried by this package.
type ServiceError struct {
	Provider   Provider
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("structuring service error (%s, status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("structuring service error (%s): %s", e.Provider, e.Message)
}

// MalformedResponseError means the endpoint answered but the payload did not
// match the required job schema.
type MalformedResponseError struct {
	Reason string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed structuring response: %s", e.Reason)
}

type Service struct {
	provider Provider
	apiKey   string
	model    string
	client   *pkghttp.Client
	baseURL  string
}

func NewService(provider, apiKey, model string, timeout time.Duration) *Service {
	s := &Service{
		provider: Provider(provider),
		apiKey:   apiKey,
		model:    model,
		client:   pkghttp.NewClient(timeout),
	}
	switch s.provider {
	case ProviderOpenAI:
		s.baseURL = "https://api.openai.com/v1/chat/completions"
	case ProviderGroq:
		s.baseURL = "https://api.groq.com/openai/v1/chat/completions"
	case ProviderOllama:
		s.baseURL = "http://localhost:11434/api/generate"
	}
	return s
}

// SetBaseURL overrides the provider endpoint. Used by tests and self-hosted
// gateways.
func (s *Service) SetBaseURL(url string) {
	s.baseURL = url
}

// StructureJob sends one raw job-posting text block to the configured
// provider and returns the schema-validated result. Description on the
// returned posting is always the full input text.
func (s *Service) StructureJob(ctx context.Context, rawText string) (*JobPosting, error) {
	if s.provider == ProviderNone || s.provider == "" {
		return nil, &ServiceError{Provider: s.provider, Message: "LLM provider not configured"}
	}

	prompt := buildPrompt(rawText)

	var response string
	var err error

	switch s.provider {
	case ProviderOpenAI, ProviderGroq:
		response, err = s.callChatCompletions(ctx, prompt)
	case ProviderOllama:
		response, err = s.callOllama(ctx, prompt)
	default:
		return nil, &ServiceError{Provider: s.provider, Message: "unknown provider"}
	}
	if err != nil {
		return nil, err
	}

	posting := &JobPosting{}
	cleaned := CleanJSON(response)
	if err := json.Unmarshal([]byte(cleaned), posting); err != nil {
		return nil, &MalformedResponseError{Reason: "response is not valid JSON: " + err.Error()}
	}

	if err := validatePosting(posting); err != nil {
		return nil, err
	}

	posting.JobType = NormalizeJobType(posting.JobType)
	posting.ClosingDate = normalizeClosingDate(posting.ClosingDate)

	// The extraction instruction forbids summarization, but the description
	// invariant must not depend on model obedience.
	posting.Description = rawText

	return posting, nil
}

func buildPrompt(rawText string) string {
	return fmt.Sprintf(`You are an expert recruitment data processor. Analyze the following job posting text and extract key information.
Your task is to return a structured JSON object with the fields: title, company, location, jobType, category, skills, description, closingDate, contactEmail, contactPhone.

**Instructions:**
1.  **jobType**: Standardize the job type (e.g., "Full-time", "Part-time", "Contract", "Internship").
2.  **category**: Assign a single, relevant category (e.g., "Information Technology", "Marketing", "Sales", "Finance", "Healthcare", "Human Resources").
3.  **description**: This must contain the FULL, original, unmodified text content. Do not summarize.
4.  **skills**: Extract a list of 5-10 of the most important skills, technologies, or qualifications.
5.  **closingDate**: Find the application closing date and format it as YYYY-MM-DD. If not found, do not include the field.
6.  **contactEmail**: Extract the contact email if available. If not found, do not include the field.
7.  **contactPhone**: Extract the contact phone number if available. If not found, do not include the field.

Return ONLY valid JSON, no markdown and no explanation. title, company, location, jobType, category, skills and description are required.

**Job Posting Text:**
---
%s
---`, rawText)
}

func (s *Service) callChatCompletions(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"model": s.model,
		"messages": []map[string]string{
			{
				"role":    "system",
				"content": "You are a recruitment data processor. Return only valid JSON.",
			},
			{
				"role":    "user",
				"content": prompt,
			},
		},
		"temperature": 0.1,
		"response_format": map[string]string{
			"type": "json_object",
		},
	}

	jsonData, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", &ServiceError{Provider: s.provider, Message: err.Error()}
	}

	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", &ServiceError{Provider: s.provider, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &ServiceError{
			Provider:   s.provider,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &MalformedResponseError{Reason: "cannot decode completion envelope: " + err.Error()}
	}

	if result.Error.Message != "" {
		return "", &ServiceError{Provider: s.provider, Message: result.Error.Message}
	}

	if len(result.Choices) == 0 {
		return "", &MalformedResponseError{Reason: "no choices in completion response"}
	}

	return result.Choices[0].Message.Content, nil
}

func (s *Service) callOllama(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]interface{}{
		"model":  s.model,
		"prompt": prompt,
		"stream": false,
		"format": "json",
	}

	jsonData, _ := json.Marshal(reqBody)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", &ServiceError{Provider: s.provider, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", &ServiceError{Provider: s.provider, Message: "Ollama connection failed (is Ollama running?): " + err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", &ServiceError{
			Provider:   s.provider,
			StatusCode: resp.StatusCode,
			Message:    strings.TrimSpace(string(body)),
		}
	}

	var result struct {
		Response string `json:"response"`
		Error    string `json:"error"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", &MalformedResponseError{Reason: "cannot decode Ollama response: " + err.Error()}
	}

	if result.Error != "" {
		return "", &ServiceError{Provider: s.provider, Message: result.Error}
	}

	return result.Response, nil
}

// validatePosting enforces the required-field part of the schema. Empty or
// missing required fields are treated the same as an unparseable response.
func validatePosting(p *JobPosting) error {
	required := map[string]string{
		"title":       p.Title,
		"company":     p.Company,
		"location":    p.Location,
		"jobType":     p.JobType,
		"category":    p.Category,
		"description": p.Description,
	}
	for field, value := range required {
		if strings.TrimSpace(value) == "" {
			return &MalformedResponseError{Reason: "required field is empty: " + field}
		}
	}

	var skills []string
	for _, s := range p.Skills {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			skills = append(skills, trimmed)
		}
	}
	if len(skills) == 0 {
		return &MalformedResponseError{Reason: "required field is empty: skills"}
	}
	p.Skills = skills

	return nil
}

// NormalizeJobType maps free-form employment types onto the controlled
// vocabulary. Unrecognized values pass through trimmed.
func NormalizeJobType(jobType string) string {
	lower := strings.ToLower(strings.TrimSpace(jobType))
	switch {
	case strings.Contains(lower, "full"):
		return "Full-time"
	case strings.Contains(lower, "part"):
		return "Part-time"
	case strings.Contains(lower, "intern"):
		return "Internship"
	case strings.Contains(lower, "contract"), strings.Contains(lower, "freelance"), strings.Contains(lower, "temporary"):
		return "Contract"
	default:
		return strings.TrimSpace(jobType)
	}
}

// normalizeClosingDate keeps the value only when it is a real YYYY-MM-DD
// date; anything else is omitted rather than stored malformed.
func normalizeClosingDate(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if _, err := time.Parse("2006-01-02", value); err != nil {
		return ""
	}
	return value
}
