package gazetteer

import (
	"embed"
	"sync"
)

//go:embed defaults/*.txt
var defaultFS embed.FS

var defaultWords = sync.OnceValue(func() map[Category][]string {
	words := make(map[Category][]string, len(Categories()))
	for _, c := range Categories() {
		list, err := readFSWords(defaultFS, "defaults/"+string(c)+".txt")
		if err != nil {
			// Embedded at build time; a missing file is a packaging bug.
			panic("gazetteer: missing default word list " + string(c))
		}
		words[c] = list
	}
	return words
})

// DefaultWords returns a copy of the built-in French word lists.
func DefaultWords() map[Category][]string {
	src := defaultWords()
	words := make(map[Category][]string, len(src))
	for c, list := range src {
		words[c] = append([]string(nil), list...)
	}
	return words
}

// Defaults returns a snapshot of the built-in word lists.
func Defaults() *Memory {
	return NewMemory(defaultWords())
}
