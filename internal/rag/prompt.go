package rag

import (
	"fmt"
	"strings"
)

// RefusalAnswer is the fixed-language answer for questions the context does not cover.
const RefusalAnswer = "Maaf, saya tidak memiliki informasi tentang itu."

// BuildSystemInstruction embeds the context block and the answering policy:
// grounded-only answers, the fixed refusal, and a trailing citation tag
// ("ARTIKEL 1 ARTIKEL 2") that a presentation layer removes before display.
func BuildSystemInstruction(outlet, newsContext string) string {
	var sys strings.Builder

	fmt.Fprintf(&sys, "Anda adalah asisten AI yang membantu menjawab pertanyaan berdasarkan berita di %s.\n\n", outlet)
	sys.WriteString("Anda HANYA boleh menjawab pertanyaan berdasarkan informasi yang terdapat dalam konteks berita berikut:\n\n")
	sys.WriteString(newsContext)
	sys.WriteString("\n\n")
	fmt.Fprintf(&sys, "Jika pertanyaan tidak terkait dengan informasi dalam konteks berita, jawablah %q\n\n", RefusalAnswer)
	sys.WriteString("PENTING:\n")
	sys.WriteString("1. Format jawaban Anda dalam Markdown yang rapi untuk meningkatkan keterbacaan.\n")
	sys.WriteString("2. Gunakan paragraf, poin-poin, dan penekanan (bold/italic) dengan tepat.\n")
	sys.WriteString("3. Elaborasi jawaban Anda dengan baik, tetapi tetap sesuai konteks pertanyaan.\n")
	fmt.Fprintf(&sys, "4. JANGAN menyertakan referensi seperti \"(%s X)\" dalam jawaban Anda. Pengguna sudah dapat melihat sumber informasi di bagian terpisah.\n", articleLabel)
	sys.WriteString("5. Tetap gunakan informasi dari artikel yang relevan, tetapi jangan menyebutkan nomor artikelnya dalam teks jawaban.\n")
	fmt.Fprintf(&sys, "6. Untuk keperluan internal sistem, tetap sertakan kode artikel yang Anda gunakan di AKHIR jawaban Anda dengan format: \"%s 1 %s 2\" (jika Anda menggunakan artikel 1 dan 2). Kode ini akan dihapus sebelum ditampilkan kepada pengguna.\n\n", articleLabel, articleLabel)
	sys.WriteString("Jawablah dalam Bahasa Indonesia yang baik dan benar.")

	return sys.String()
}
