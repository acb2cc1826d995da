package app

import (
	"strings"

	"plumeai/pkg/domain"
)

// The chat endpoint simulates an assistant typing; replies are fixed
// scripts, not generated text. The ebook script walks through plan,
// chapters, and cover with embedded progress markers the frontend parses.

const ebookPreface = "Voici un plan détaillé, puis une rédaction progressive des chapitres " +
	"et enfin une proposition de couverture. " +
	"Vous pouvez continuer à me donner des instructions pendant la génération.\n\n"

var ebookStages = []string{
	"[progress:10] Plan de l'ebook généré.\n\n1. Introduction\n2. Concepts clés\n3. Études de cas\n4. Conclusion\n",
	"[progress:55] Rédaction des chapitres en cours...\n\nChapitre 1: ...\nChapitre 2: ...\nChapitre 3: ...\n",
	"[progress:85] Création de la couverture: Titre, sous-titre, auteur, palette.\n",
	"[progress:100] [done]",
}

// ChatReply validates the request and returns the full reply script. The
// ebook script is identical for every request; the generic reply echoes the
// trimmed user message. History is accepted but does not influence the
// reply.
func (a *App) ChatReply(req domain.ChatRequest) (string, error) {
	userText := strings.TrimSpace(req.Message)
	if userText == "" {
		return "", ErrEmptyMessage
	}
	if req.Mode == domain.ModeEbook {
		var b strings.Builder
		b.WriteString(ebookPreface)
		for _, stage := range ebookStages {
			b.WriteString(stage)
		}
		return b.String(), nil
	}
	return "Bien sûr! Vous avez dit: '" + userText + "'. " +
		"Voici une réponse utile, avec des idées concrètes et des étapes suivantes.", nil
}
