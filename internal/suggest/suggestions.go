// Mind Digest - Wellness Recommendation and Behavior Learning
// Copyright 2026 Wetende
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/Wetende/mind-digest

package suggest

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/goccy/go-json"

	"github.com/Wetende/mind-digest-sub001/internal/recommend"
)

const systemPrompt = `You are a supportive wellness assistant inside a mental health journaling app.
You never diagnose. Suggestions are gentle, concrete and short.
Respond with a single JSON object and nothing else.`

const contextualSchema = `{"content":[ITEM],"exercises":{"immediate":[ITEM],"preventive":[ITEM]},"activities":[ITEM],"insights":["..."]}
ITEM = {"id":"kebab-case","type":"article|video|breathing|grounding|journaling|movement|activity","title":"...","description":"...","reason":"...","priority":"high|medium|low","score":0.0-1.0,"expected_outcome":"...","duration":"5 min"}`

const peerSchema = `{"peers":[{"id":"...","display_name":"...","compatibility_score":0.0-1.0,"behavioral_similarity":0.0-1.0,"shared_interests":["..."],"suggested_interaction":"...","reason":"..."}]}`

const taskSchema = `{"tasks":[{"id":"kebab-case","type":"intervention|preventive|maintenance","title":"...","description":"...","reason":"...","priority":"high|medium|low","score":0.0-1.0,"duration":"5 min"}]}
Use priority high only for interventions, medium for preventive tasks and low for maintenance.`

type aiItem struct {
	ID              string   `json:"id"`
	Category        string   `json:"category"`
	Type            string   `json:"type"`
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Reason          string   `json:"reason"`
	Priority        string   `json:"priority"`
	Score           *float64 `json:"score"`
	ExpectedOutcome string   `json:"expected_outcome"`
	Duration        string   `json:"duration"`
}

type contextualAnswer struct {
	Content   []aiItem `json:"content"`
	Exercises struct {
		Immediate  []aiItem `json:"immediate"`
		Preventive []aiItem `json:"preventive"`
	} `json:"exercises"`
	Activities []aiItem `json:"activities"`
	Insights   []string `json:"insights"`
}

type peerAnswer struct {
	Peers []recommend.PeerCandidate `json:"peers"`
}

type taskAnswer struct {
	Tasks []aiItem `json:"tasks"`
}

// SuggestContextual asks for content, exercises and activities for the
// request context.
func (p *OpenAIProvider) SuggestContextual(ctx context.Context, payload recommend.ContextualPayload) (*recommend.Bundle, error) {
	prompt, err := buildPrompt("Suggest wellness recommendations for this user.", contextualSchema, payload)
	if err != nil {
		return nil, err
	}

	var ans contextualAnswer
	if err := p.complete(ctx, systemPrompt, prompt, &ans); err != nil {
		return nil, fmt.Errorf("contextual suggestions: %w", err)
	}

	b := &recommend.Bundle{
		UserID:      payload.UserID,
		Content:     convertItems(ans.Content, recommend.CategoryContent, recommend.TypeArticle),
		Activities:  convertItems(ans.Activities, recommend.CategoryActivity, recommend.TypeActivity),
		Insights:    nonEmpty(ans.Insights),
		Context:     payload.Context,
		GeneratedAt: p.now(),
		Source:      recommend.SourceAI,
	}
	b.Exercises.Immediate = convertItems(ans.Exercises.Immediate, recommend.CategoryExercise, recommend.TypeBreathing)
	b.Exercises.Preventive = convertItems(ans.Exercises.Preventive, recommend.CategoryExercise, recommend.TypeMovement)
	if payload.MaxItems > 0 && len(b.Content) > payload.MaxItems {
		b.Content = b.Content[:payload.MaxItems]
	}
	return b, nil
}

// SuggestPeers asks for peer interaction ideas.
func (p *OpenAIProvider) SuggestPeers(ctx context.Context, payload recommend.PeerPayload) (*recommend.PeerBundle, error) {
	prompt, err := buildPrompt("Suggest supportive peer connections for this user.", peerSchema, payload)
	if err != nil {
		return nil, err
	}

	var ans peerAnswer
	if err := p.complete(ctx, systemPrompt, prompt, &ans); err != nil {
		return nil, fmt.Errorf("peer suggestions: %w", err)
	}

	peers := make([]recommend.PeerCandidate, 0, len(ans.Peers))
	for i := range ans.Peers {
		c := ans.Peers[i]
		if c.ID == "" {
			continue
		}
		c.CompatibilityScore = recommend.ClampScore(c.CompatibilityScore)
		c.BehavioralSimilarity = recommend.ClampScore(c.BehavioralSimilarity)
		c.AIEnhanced = true
		peers = append(peers, c)
		if payload.Limit > 0 && len(peers) == payload.Limit {
			break
		}
	}
	return &recommend.PeerBundle{
		UserID:      payload.UserID,
		Peers:       peers,
		GeneratedAt: p.now(),
		Source:      recommend.SourceAI,
	}, nil
}

// SuggestTasks asks for untriaged wellness tasks.
func (p *OpenAIProvider) SuggestTasks(ctx context.Context, payload recommend.TaskPayload) ([]recommend.Item, error) {
	prompt, err := buildPrompt("Suggest wellness tasks for this user.", taskSchema, payload)
	if err != nil {
		return nil, err
	}

	var ans taskAnswer
	if err := p.complete(ctx, systemPrompt, prompt, &ans); err != nil {
		return nil, fmt.Errorf("task suggestions: %w", err)
	}
	return convertItems(ans.Tasks, recommend.CategoryActivity, recommend.TypeMaintenance), nil
}

func buildPrompt(instruction, schema string, payload interface{}) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	var sb strings.Builder
	sb.WriteString(instruction)
	sb.WriteString("\n\nUser context:\n")
	sb.Write(data)
	sb.WriteString("\n\nAnswer with JSON of this shape:\n")
	sb.WriteString(schema)
	return sb.String(), nil
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

func convertItems(in []aiItem, category recommend.Category, defaultType string) []recommend.Item {
	out := make([]recommend.Item, 0, len(in))
	for i := range in {
		a := &in[i]
		title := strings.TrimSpace(a.Title)
		if title == "" {
			continue
		}

		id := strings.TrimSpace(a.ID)
		if id == "" {
			id = "ai-" + strings.Trim(slugRe.ReplaceAllString(strings.ToLower(title), "-"), "-")
		}
		itemType := strings.ToLower(strings.TrimSpace(a.Type))
		if itemType == "" {
			itemType = defaultType
		}
		cat := category
		if c := recommend.Category(strings.ToLower(a.Category)); c == recommend.CategoryContent ||
			c == recommend.CategoryExercise || c == recommend.CategoryPeer || c == recommend.CategoryActivity {
			cat = c
		}
		score := 0.5
		if a.Score != nil {
			score = *a.Score
		}

		item := recommend.NewItem(id, cat, itemType, title, priority(a.Priority), score)
		item.Description = a.Description
		item.Reason = a.Reason
		item.Duration = a.Duration
		item.AIEnhanced = true
		if a.ExpectedOutcome != "" {
			outcome := a.ExpectedOutcome
			item.ExpectedOutcome = &outcome
		}
		out = append(out, item)
	}
	return out
}

func priority(s string) recommend.Priority {
	switch recommend.Priority(strings.ToLower(strings.TrimSpace(s))) {
	case recommend.PriorityHigh:
		return recommend.PriorityHigh
	case recommend.PriorityLow:
		return recommend.PriorityLow
	default:
		return recommend.PriorityMedium
	}
}

func nonEmpty(ss []string) []string {
	var out []string
	for _, s := range ss {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
