package textproc

import "strings"

// defaultAvgWordLen stands in for the per-document average when the text
// has no measurable words.
const defaultAvgWordLen = 5.0

// Chunk normalizes text and splits it into overlapping word windows.
// chunkSize and overlap are character budgets; they are converted to word
// counts using the document's own average word length so boundaries adapt
// to its vocabulary. Words are never split. Empty normalized input yields
// no chunks.
func Chunk(text string, chunkSize, overlap int) []string {
	text = Normalize(text)
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	avg := float64(len(text)) / float64(len(words))
	if avg <= 0 {
		avg = defaultAvgWordLen
	}
	wordsPerChunk := int(float64(chunkSize) / avg)
	if wordsPerChunk < 1 {
		wordsPerChunk = 1
	}
	overlapWords := int(float64(overlap) / avg)
	step := wordsPerChunk - overlapWords
	if step < 1 {
		// overlap >= window would stall the slide; clamp so it terminates
		step = 1
	}
	var chunks []string
	for i := 0; i < len(words); i += step {
		end := i + wordsPerChunk
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[i:end], " "))
	}
	return chunks
}
