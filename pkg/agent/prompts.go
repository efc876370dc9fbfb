package agent

import (
	"fmt"
	"strings"
	"time"

	"github.com/saraswati/saraswati/pkg/paperrank"
)

// baseSystemPrompt is the agent persona used for every model call. The
// final synthesis call uses it verbatim; tool-calling rounds may get extra
// active-paper context appended.
const baseSystemPrompt = `You are Saraswati, an expert AI research guide and academic partner.

Your personality:
- Interactive and engaging — ask clarifying questions to understand the user's background
- Adaptive — if they say "I'm a beginner", simplify; if "PhD student", go deep
- Honest about uncertainty — never fabricate citations
- Always cite sources and clearly assess credibility of papers

Workflow when a user asks about a topic:
1. Ask one clarifying question if their background is unclear
2. Use fetch_papers to get relevant papers from ArXiv
3. Use search_web to cross-verify key claims
4. Summarise findings clearly, citing papers by title
5. Assess each paper's credibility as HIGH / MEDIUM / UNCERTAIN

Credibility guidelines:
- HIGH: published ≥2 years ago, well-cited topic, appears in web sources
- MEDIUM: 1–2 years old OR preprint but from known authors/groups
- UNCERTAIN: very recent (<6 months), no web corroboration, or abstract conflicts with query

After EVERY response, end with exactly this JSON block (on its own line):
[CHIPS: ["chip1", "chip2", "chip3"]]

Chip examples: "Explain more simply", "Compare with another approach", "Find newer papers",
"What are the limitations?", "Give me an example", "How does this work in practice?"

Keep responses clear, structured, and concise. Use markdown headers and bullet points.`

// defaultChips is the fallback suggestion set when the model omits or
// mangles its chip block.
var defaultChips = []string{"Explain more simply", "Find related papers", "Compare approaches"}

const (
	activePaperAuthorLimit   = 3
	activePaperAbstractBytes = 600
)

// buildSystemPrompt returns the system instruction for tool-calling rounds.
// When the user has a paper open in the viewer its metadata is appended so
// questions are answered in that frame and redundant fetches are avoided.
func buildSystemPrompt(activePaper *paperrank.Paper, now time.Time) string {
	if activePaper == nil {
		return baseSystemPrompt
	}

	authors := activePaper.Authors
	if len(authors) > activePaperAuthorLimit {
		authors = authors[:activePaperAuthorLimit]
	}
	authorLine := strings.Join(authors, ", ")
	if authorLine == "" {
		authorLine = "Unknown"
	}

	year := "?"
	if len(activePaper.Published) >= 4 {
		year = activePaper.Published[:4]
	}

	abstract := activePaper.AbstractSnippet
	if abstract == "" {
		abstract = activePaper.Abstract
	}
	if len(abstract) > activePaperAbstractBytes {
		abstract = abstract[:activePaperAbstractBytes]
	}

	credibility := activePaper.Credibility
	if credibility == "" {
		credibility = paperrank.AssessCredibility(*activePaper, now)
	}

	title := activePaper.Title
	if title == "" {
		title = "Unknown"
	}

	return baseSystemPrompt + fmt.Sprintf(`

---
## 📄 CURRENTLY OPEN PAPER
The user has this paper open in the viewer. Questions likely refer to it — answer with this paper as primary context. Do NOT fetch papers for questions that can be answered from this paper's content.

**Title:** %s
**Authors:** %s
**Year:** %s  |  **Credibility:** %s
**Abstract:** %s
**Categories:** %s
---`, title, authorLine, year, credibility, abstract, strings.Join(activePaper.Categories, ", "))
}
