package prompt

import (
	"fmt"
	"strings"

	"codeopt/internal/domain"
)

// DefaultTarget names the language/framework the task instruction asks the
// model to optimize for.
const DefaultTarget = "Java code for Spring Boot microservice"

// Composer renders retrieval results and the submitted code into the single
// instruction text sent to the language model. Pure formatting: the same
// inputs always produce byte-identical output.
type Composer struct {
	target string
}

func NewComposer(target string) *Composer {
	if target == "" {
		target = DefaultTarget
	}
	return &Composer{target: target}
}

// Compose renders one context block per retrieved record, in retrieval
// order, followed by the task instruction and the code to transform. With no
// retrieved context the preamble is dropped and only the instruction remains.
func (c *Composer) Compose(records []domain.RetrievedRecord, code string) string {
	if len(records) == 0 {
		return fmt.Sprintf("Performance optimize the following %s:\n\n%s", c.target, code)
	}
	blocks := make([]string, len(records))
	for i, r := range records {
		blocks[i] = renderBlock(r)
	}
	return fmt.Sprintf("Based on the following Observations and Recommendations:\n%s\n\nPerformance Optimize this %s:\n%s",
		strings.Join(blocks, "\n\n"), c.target, code)
}

func renderBlock(r domain.RetrievedRecord) string {
	if r.Source == domain.SourceJSON {
		return fmt.Sprintf("Tech Context (%s): %s", r.Key, r.Observation)
	}
	var b strings.Builder
	if r.SourceSheet != "" {
		fmt.Fprintf(&b, "Sheet: %s\n", r.SourceSheet)
	}
	fmt.Fprintf(&b, "Observation: %s\n", r.Observation)
	if r.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", r.Description)
	}
	fmt.Fprintf(&b, "Recommendation: %s", r.Recommendation)
	return b.String()
}
