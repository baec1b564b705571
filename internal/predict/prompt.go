package predict

import (
	"fmt"
	"strings"

	"github.com/abhisek/wmview/internal/dataset"
)

const systemPrompt = `You are answering questions from a world-model benchmark built from video key frames.

Rules:
- Each question asks for a sequence of option numbers, such as the order in which events happen or the actions that lead from one frame to another.
- Answer with integers between 1 and 10 only, one per step, in order.
- The frames are given as image paths; reason from the question text and the frame count.
- Keep the reasoning short.`

// buildUserMessage renders a sample as the user turn of the request.
func buildUserMessage(s dataset.Sample) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Task: %s\n", s.TaskName)
	fmt.Fprintf(&b, "Setting: %s\n", s.Setting().Label())
	fmt.Fprintf(&b, "Steps: %d\n", s.StepCount())

	b.WriteString("\nFrames:\n")
	if len(s.Images) == 0 {
		b.WriteString("None\n")
	}
	for i, img := range s.Images {
		fmt.Fprintf(&b, "%d. %s\n", i+1, img)
	}

	b.WriteString("\nQuestion:\n")
	b.WriteString(strings.TrimSpace(s.Question))
	return b.String()
}
