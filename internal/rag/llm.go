package rag

import "context"

// EmbeddingsClient transforma texto em vetor. Erro = vetor ausente.
type EmbeddingsClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// AnswerGenerator gera a resposta final a partir da instrução de sistema
// (com o contexto já montado) e do histórico da conversa.
type AnswerGenerator interface {
	Generate(ctx context.Context, systemInstruction string, history []Message, temperature float32) (string, error)
}
