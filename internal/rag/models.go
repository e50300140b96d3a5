package rag

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Document
// Uma notícia do corpus. ID é a posição 1-based no corpus e nunca muda.
type Document struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	URL      string `json:"url"`
	FullText string `json:"full_text"`
}

// EmbeddedDocument
// Documento + vetor. Embedding vazio = falha no embedding; o documento fica
// no cache mas nunca é escolhido por similaridade.
type EmbeddedDocument struct {
	Document
	Embedding []float32 `json:"embedding"`
}

// RankedDocument
// Só existe durante o ranking de um request.
type RankedDocument struct {
	EmbeddedDocument
	Score    float64 `json:"score"`
	Position int     `json:"position"`
}

// ContentKind distingue os dois formatos aceitos em Message.Content.
type ContentKind int

const (
	ContentPlainText ContentKind = iota
	ContentStructuredParts
)

// ContentPart
// Um pedaço de conteúdo estruturado. Partes sem texto (imagem, arquivo...)
// têm Text nil.
type ContentPart struct {
	Type string  `json:"type,omitempty"`
	Text *string `json:"text,omitempty"`
}

// Content é {PlainText(string), StructuredParts([]ContentPart)}.
type Content struct {
	Kind  ContentKind
	Text  string
	Parts []ContentPart
}

// PlainText builds a string content.
func PlainText(s string) Content {
	return Content{Kind: ContentPlainText, Text: s}
}

// StructuredParts builds a multi-part content.
func StructuredParts(parts ...ContentPart) Content {
	return Content{Kind: ContentStructuredParts, Parts: parts}
}

// TextPart is a shortcut for a text-bearing part.
func TextPart(s string) ContentPart {
	return ContentPart{Type: "text", Text: &s}
}

// Flatten resolves the content to a single string. Parts are joined with a
// single space; parts without text contribute "".
func (c Content) Flatten() string {
	if c.Kind == ContentPlainText {
		return c.Text
	}
	texts := make([]string, len(c.Parts))
	for i, p := range c.Parts {
		if p.Text != nil {
			texts[i] = *p.Text
		}
	}
	return strings.Join(texts, " ")
}

func (c *Content) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*c = PlainText("")
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = PlainText(s)
		return nil

	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		parts := make([]ContentPart, 0, len(raw))
		for _, r := range raw {
			parts = append(parts, decodePart(r))
		}
		*c = StructuredParts(parts...)
		return nil

	default:
		return fmt.Errorf("message content must be a string or an array of parts")
	}
}

func (c Content) MarshalJSON() ([]byte, error) {
	if c.Kind == ContentPlainText {
		return json.Marshal(c.Text)
	}
	parts := c.Parts
	if parts == nil {
		parts = []ContentPart{}
	}
	return json.Marshal(parts)
}

// decodePart aceita string solta ou objeto; qualquer outra coisa vira parte sem texto.
func decodePart(r json.RawMessage) ContentPart {
	var s string
	if err := json.Unmarshal(r, &s); err == nil {
		return TextPart(s)
	}

	var obj struct {
		Type string          `json:"type"`
		Text json.RawMessage `json:"text"`
	}
	if err := json.Unmarshal(r, &obj); err != nil {
		return ContentPart{}
	}

	part := ContentPart{Type: obj.Type}
	var text string
	if len(obj.Text) > 0 && json.Unmarshal(obj.Text, &text) == nil {
		part.Text = &text
	}
	return part
}

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message
// Uma mensagem do histórico da conversa.
type Message struct {
	Role    Role    `json:"role"`
	Content Content `json:"content"`
}

// ChatRequest
// Payload da API /api/chat.
type ChatRequest struct {
	Messages []Message `json:"messages"`
}

// LatestQuestion returns the flattened text of the last message, or "" for
// an empty history.
func LatestQuestion(history []Message) string {
	if len(history) == 0 {
		return ""
	}
	return history[len(history)-1].Content.Flatten()
}
