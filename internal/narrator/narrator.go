// Package narrator renders engine outcomes as witness-voiced prose. It works
// from outcome facts only; rolls and probabilities never reach a prompt.
package narrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/Roderick111/auror/internal/ai"
	"github.com/Roderick111/auror/internal/errors"
	"github.com/sashabaranov/go-openai"
)

// Scene carries the facts the narrator may voice for one exchange.
type Scene struct {
	CaseTitle   string
	WitnessName string
	Question    string
	// TrustShift is the clamped trust movement this exchange caused.
	TrustShift int
	// RevealedSecrets holds the text of secrets surfaced by this exchange, in
	// reveal order. The narrator must work each of them into the answer.
	RevealedSecrets []string
	// SpellDetected is set when the witness noticed a Legilimency intrusion.
	SpellDetected bool
}

// Narrator produces the witness's answer for a scene.
type Narrator interface {
	Answer(ctx context.Context, scene Scene) (string, error)
}

const narratorPrompt = `You voice a witness being questioned by a trainee Auror in the case "%s".
You are %s. Answer the investigator's question in character, in at most three sentences.
Never mention dice, probabilities, scores, or game mechanics.`

// AINarrator prompts the chat model with the scene facts.
type AINarrator struct {
	client *ai.Client
}

func NewAINarrator(client *ai.Client) *AINarrator {
	return &AINarrator{client: client}
}

func (n *AINarrator) Answer(ctx context.Context, scene Scene) (string, error) {
	completion, err := n.client.SyncCompletion(ctx, []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: fmt.Sprintf(narratorPrompt, scene.CaseTitle, scene.WitnessName),
		},
		{
			Role:    openai.ChatMessageRoleUser,
			Content: sceneDirectives(scene),
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "narrate answer")
	}
	if len(completion.Choices) == 0 {
		return "", errors.New("empty narration completion")
	}
	answer := strings.TrimSpace(completion.Choices[0].Message.Content)
	if answer == "" {
		return "", errors.New("blank narration completion")
	}
	return answer, nil
}

// sceneDirectives renders the outcome facts as instructions for the model.
func sceneDirectives(scene Scene) string {
	var b strings.Builder
	fmt.Fprintf(&b, "The investigator asks: %q\n", scene.Question)
	switch {
	case scene.SpellDetected:
		b.WriteString("You just felt someone probing your mind. You are angry and on guard.\n")
	case scene.TrustShift > 0:
		b.WriteString("The remark made you warmer toward the investigator.\n")
	case scene.TrustShift < 0:
		b.WriteString("The remark made you colder and more defensive.\n")
	}
	for _, secret := range scene.RevealedSecrets {
		fmt.Fprintf(&b, "You decide to reveal this, in your own words: %s\n", secret)
	}
	if len(scene.RevealedSecrets) == 0 {
		b.WriteString("Do not reveal anything you were not asked about.\n")
	}
	return b.String()
}

// Fallback is the deterministic narrator used in development, tests, and
// offline play. Secret texts are quoted verbatim so that no information the
// engine surfaced is lost.
type Fallback struct{}

func (Fallback) Answer(_ context.Context, scene Scene) (string, error) {
	var b strings.Builder
	switch {
	case scene.SpellDetected:
		fmt.Fprintf(&b, "%s narrows their eyes. \"Keep out of my head, Auror.\"", scene.WitnessName)
	case scene.TrustShift > 0:
		fmt.Fprintf(&b, "%s softens a little before answering.", scene.WitnessName)
	case scene.TrustShift < 0:
		fmt.Fprintf(&b, "%s stiffens and looks away.", scene.WitnessName)
	default:
		fmt.Fprintf(&b, "%s considers the question.", scene.WitnessName)
	}
	for _, secret := range scene.RevealedSecrets {
		fmt.Fprintf(&b, " %q", secret)
	}
	return b.String(), nil
}
