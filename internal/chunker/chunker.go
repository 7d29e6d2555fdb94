package chunker

import (
	"fmt"
	"strings"

	"github.com/dshills/codesearch/internal/coretypes"
)

const (
	// MaxTokensPerChunk is the target maximum token count sent to the
	// embedder in one chunk. Chunks larger than this are split at line
	// boundaries by SplitOversized.
	MaxTokensPerChunk = 2000

	// TokensPerChar is the heuristic used to estimate token count from
	// character count. A proper tokenizer would be more accurate; this
	// heuristic is only used to decide whether a chunk needs splitting,
	// not for anything embedding-quality-sensitive.
	TokensPerChar = 4
)

// EstimateTokens estimates the number of tokens in text.
func EstimateTokens(text string) int {
	return len(text) / TokensPerChar
}

// SplitOversized splits a chunk whose estimated token count exceeds
// MaxTokensPerChunk into consecutive sub-chunks of roughly equal line
// count, each keeping the parent's symbol name and file path so search
// results still resolve to the same logical definition. Chunks within
// budget are returned unchanged as a single-element slice.
func SplitOversized(repoID string, c coretypes.Chunk) []coretypes.Chunk {
	if EstimateTokens(c.Content) <= MaxTokensPerChunk {
		return []coretypes.Chunk{c}
	}

	lines := strings.Split(c.Content, "\n")
	maxLinesPerPart := (MaxTokensPerChunk * TokensPerChar) / avgLineLen(lines)
	if maxLinesPerPart < 1 {
		maxLinesPerPart = 1
	}

	var parts []coretypes.Chunk
	for start := 0; start < len(lines); start += maxLinesPerPart {
		end := start + maxLinesPerPart
		if end > len(lines) {
			end = len(lines)
		}
		partStartLine := c.StartLine + start
		part := c
		part.StartLine = partStartLine
		part.EndLine = c.StartLine + end - 1
		part.Content = strings.Join(lines[start:end], "\n")
		part.SymbolName = fmt.Sprintf("%s#%d", c.SymbolName, len(parts))
		part.ID = coretypes.ChunkID(repoID, c.FilePath, partStartLine, part.SymbolName)
		if part.Validate() == nil {
			parts = append(parts, part)
		}
	}
	if len(parts) == 0 {
		return []coretypes.Chunk{c}
	}
	return parts
}

func avgLineLen(lines []string) int {
	if len(lines) == 0 {
		return 1
	}
	total := 0
	for _, l := range lines {
		total += len(l) + 1
	}
	// Round up: a truncated average lets parts sized from it overshoot
	// MaxTokensPerChunk.
	avg := (total + len(lines) - 1) / len(lines)
	if avg < 1 {
		return 1
	}
	return avg
}
