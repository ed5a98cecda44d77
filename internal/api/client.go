// Package api is a small client for the dictation REST API: the lesson
// catalogue and guest registration.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"example.com/dictation/internal/answer"
	"example.com/dictation/internal/ident"
)

const DefaultBaseURL = "http://localhost:8080/api/v1"

// error bodies beyond this are not worth reading
const maxErrorBody = 64 << 10

type Language struct {
	ID         int    `json:"id"`
	Code       string `json:"code"`
	Name       string `json:"name"`
	NativeName string `json:"native_name"`
	IsActive   bool   `json:"is_active"`
}

type Category struct {
	ID          int    `json:"id"`
	LanguageID  int    `json:"language_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
	IsActive    bool   `json:"is_active"`
}

type Lesson struct {
	ID                   int     `json:"id"`
	CategoryID           int     `json:"category_id"`
	Name                 string  `json:"lesson_name"`
	VocabLevel           string  `json:"vocab_level"`
	SpeechToTextLangCode string  `json:"speech_to_text_lang_code"`
	Type                 string  `json:"lesson_type"`
	AudioSrc             string  `json:"audio_src"`
	YoutubeURL           *string `json:"youtube_url"`
	YoutubeEmbedURL      *string `json:"youtube_embed_url"`
	VideoID              *string `json:"video_id"`
	VideoTitle           *string `json:"video_title"`
	IsActive             bool    `json:"is_active"`
}

type Challenge struct {
	ID                    int             `json:"id"`
	LessonID              int             `json:"lesson_id"`
	Position              int             `json:"position"`
	Content               string          `json:"content"`
	DefaultInput          string          `json:"default_input"`
	JSONContent           json.RawMessage `json:"json_content"`
	Solution              answer.Expected `json:"solution"`
	AudioSrc              string          `json:"audio_src"`
	TimeStart             float64         `json:"time_start"`
	TimeEnd               float64         `json:"time_end"`
	Hint                  *string         `json:"hint"`
	Hints                 []string        `json:"hints"`
	Explanation           *string         `json:"explanation"`
	AlwaysShowExplanation bool            `json:"always_show_explanation"`
	NbComments            int             `json:"nb_comments"`
}

type User struct {
	ID                 ident.ID `json:"id"`
	Email              *string  `json:"email"`
	FullName           string   `json:"full_name"`
	LearningLanguageID int      `json:"learning_language_id"`
	UserType           string   `json:"user_type"`
	IsActive           bool     `json:"is_active"`
	CreatedAt          string   `json:"created_at"`
	UpdatedAt          string   `json:"updated_at"`
}

type GuestRegisterRequest struct {
	FullName           string `json:"full_name"`
	LearningLanguageID int    `json:"learning_language_id"`
}

type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
	log     *slog.Logger
}

func New(baseURL string, timeout time.Duration, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     log.With("component", "api"),
	}
}

// WithToken returns a copy that sends the bearer token on every request.
func (c *Client) WithToken(token string) *Client {
	cp := *c
	cp.token = token
	return &cp
}

func (c *Client) Languages(ctx context.Context) ([]Language, error) {
	var out struct {
		Languages []Language `json:"languages"`
	}
	if err := c.do(ctx, http.MethodGet, "/languages", nil, &out); err != nil {
		return nil, err
	}
	return out.Languages, nil
}

func (c *Client) Categories(ctx context.Context, languageID int) ([]Category, error) {
	var out struct {
		Categories []Category `json:"categories"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/categories/language/%d", languageID), nil, &out); err != nil {
		return nil, err
	}
	return out.Categories, nil
}

func (c *Client) Lessons(ctx context.Context, categoryID int) ([]Lesson, error) {
	var out struct {
		Lessons []Lesson `json:"lessons"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/lessons/category/%d", categoryID), nil, &out); err != nil {
		return nil, err
	}
	return out.Lessons, nil
}

func (c *Client) Challenges(ctx context.Context, lessonID int) ([]Challenge, error) {
	var out struct {
		Challenges []Challenge `json:"challenges"`
	}
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/challenges/lesson/%d", lessonID), nil, &out); err != nil {
		return nil, err
	}
	return out.Challenges, nil
}

func (c *Client) RegisterGuest(ctx context.Context, req GuestRegisterRequest) (AuthResponse, error) {
	var out AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register-guest", req, &out); err != nil {
		return AuthResponse{}, err
	}
	if out.Token == "" {
		return AuthResponse{}, fmt.Errorf("api: register guest: empty token in response")
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: encode %s: %w", path, err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.log.Debug("request", "method", method, "path", path, "status", resp.StatusCode, "took", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return statusError(resp, b)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("api: decode %s: %w", path, err)
	}
	return nil
}
