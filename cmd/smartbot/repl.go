package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"
)

const replIntro = `smartbot interactive console
Type 'help' for available commands, 'exit' to quit.`

const replHelp = `Commands:
  preprocess <text>        normalize text (lowercase, strip punctuation)
  spell <text>             spell-correct text against the model vocabulary
  build <order> [file]     build an n-gram model (2 or 3) from a file,
                           or from the conversation history if no file given
  predict <order> <text>   predict the next word after the given prefix
  seq <order> <n> <text>   extend the seed text by n sampled words
  generate <text>          generate a reply and record it in the history
  feedback <value>         rate the last output: good, bad, or 1-10
  params                   show the current generation parameters
  adjustments              show the feedback adjustment history
  history [limit]          show recent conversation exchanges
  export [file]            export the conversation history as JSON
  clear                    clear the conversation history
  exit                     quit the console`

func replCmd() *cli.Command {
	return &cli.Command{
		Name:  "repl",
		Usage: "Run the interactive console",
		Flags: commonFlags(),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			session, _, _, cleanup, err := setup()
			if err != nil {
				return err
			}
			defer cleanup()

			fmt.Println(replIntro)
			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("(smartbot) > ")
				if !scanner.Scan() {
					break
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					break
				}
				runReplCommand(ctx, session, line)
			}
			fmt.Println("Goodbye!")
			return scanner.Err()
		},
	}
}

// runReplCommand dispatches one console line. Failures are reported to the
// user verbatim and never abort the loop.
func runReplCommand(ctx context.Context, session *Session, line string) {
	command, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	var err error
	switch command {
	case "help":
		fmt.Println(replHelp)
	case "preprocess":
		err = replPreprocess(session, rest)
	case "spell":
		err = replSpell(session, rest)
	case "build":
		err = replBuild(ctx, session, rest)
	case "predict":
		err = replPredict(session, rest)
	case "seq":
		err = replSequence(session, rest)
	case "generate":
		err = replGenerate(ctx, session, rest)
	case "feedback":
		err = replFeedback(session, rest)
	case "params":
		p := session.Params()
		fmt.Printf("temperature: %.3f\n", p.Temperature)
	case "adjustments":
		replAdjustments(session)
	case "history":
		err = replHistory(ctx, session, rest)
	case "export":
		err = replExport(ctx, session, rest)
	case "clear":
		if err = session.ClearHistory(ctx); err == nil {
			fmt.Println("Conversation history cleared.")
		}
	default:
		fmt.Printf("Unknown command %q. Type 'help' for available commands.\n", command)
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
	}
}

func replPreprocess(session *Session, text string) error {
	if text == "" {
		return fmt.Errorf("usage: preprocess <text>")
	}
	fmt.Println(session.Preprocess(text))
	return nil
}

func replSpell(session *Session, text string) error {
	if text == "" {
		return fmt.Errorf("usage: spell <text>")
	}
	corrected, err := session.SpellCorrect(text)
	if err != nil {
		return err
	}
	fmt.Println(corrected)
	return nil
}

func replBuild(ctx context.Context, session *Session, args string) error {
	orderArg, file, _ := strings.Cut(args, " ")
	if orderArg == "" {
		return fmt.Errorf("usage: build <order> [file]")
	}
	order, err := strconv.Atoi(orderArg)
	if err != nil {
		return fmt.Errorf("order must be an integer: %q", orderArg)
	}

	file = strings.TrimSpace(file)
	if file == "" {
		model, err := session.BuildModelFromHistory(ctx, order)
		if err != nil {
			return err
		}
		fmt.Printf("Order-%d model built from conversation history (%d contexts, %d transitions).\n",
			order, model.Contexts(), model.Transitions())
		return nil
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}
	model, err := session.BuildModel(string(data), order)
	if err != nil {
		return err
	}
	fmt.Printf("Order-%d model built from %s (%d contexts, %d transitions).\n",
		order, file, model.Contexts(), model.Transitions())
	return nil
}

func replPredict(session *Session, args string) error {
	orderArg, prefix, _ := strings.Cut(args, " ")
	prefix = strings.TrimSpace(prefix)
	if orderArg == "" || prefix == "" {
		return fmt.Errorf("usage: predict <order> <prefix text>")
	}
	order, err := strconv.Atoi(orderArg)
	if err != nil {
		return fmt.Errorf("order must be an integer: %q", orderArg)
	}

	next, _, err := session.Predict(prefix, order, 0)
	if err != nil {
		return err
	}
	fmt.Printf("Predicted next word for %q: %s\n", prefix, next)
	return nil
}

func replSequence(session *Session, args string) error {
	fields := strings.SplitN(args, " ", 3)
	if len(fields) < 3 {
		return fmt.Errorf("usage: seq <order> <length> <seed text>")
	}
	order, err := strconv.Atoi(fields[0])
	if err != nil {
		return fmt.Errorf("order must be an integer: %q", fields[0])
	}
	length, err := strconv.Atoi(fields[1])
	if err != nil {
		return fmt.Errorf("length must be an integer: %q", fields[1])
	}
	seed := strings.TrimSpace(fields[2])

	sequence, err := session.Generate(seed, order, length, 0)
	if err != nil {
		return err
	}
	fmt.Println(strings.Join(sequence, " "))
	return nil
}

func replGenerate(ctx context.Context, session *Session, input string) error {
	if input == "" {
		return fmt.Errorf("usage: generate <text>")
	}
	response, err := session.Respond(ctx, input)
	if err != nil {
		return err
	}
	fmt.Printf("Input: %s\nResponse: %s\n", input, response)
	return nil
}

func replFeedback(session *Session, value string) error {
	if value == "" {
		return fmt.Errorf("usage: feedback <good|bad|1-10>")
	}
	params, err := session.ApplyFeedback(value)
	if err != nil {
		return err
	}
	fmt.Printf("Feedback processed. temperature: %.3f\n", params.Temperature)
	return nil
}

func replAdjustments(session *Session) {
	adjustments := session.Adjustments()
	if len(adjustments) == 0 {
		fmt.Println("No adjustments recorded.")
		return
	}
	for i, adj := range adjustments {
		fmt.Printf("%d. %s: requested %+.3f, applied %+.3f (%.3f -> %.3f)\n",
			i+1, adj.Feedback, adj.Requested, adj.Applied, adj.Before, adj.After)
	}
}

func replHistory(ctx context.Context, session *Session, arg string) error {
	limit := 10
	if arg != "" {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return fmt.Errorf("limit must be an integer: %q", arg)
		}
		limit = n
	}
	exchanges, err := session.History(ctx, limit)
	if err != nil {
		return err
	}
	if len(exchanges) == 0 {
		fmt.Println("No conversation history.")
		return nil
	}
	for i, ex := range exchanges {
		fmt.Printf("Exchange %d:\n  User: %s\n  Bot:  %s\n", i+1, ex.Input, ex.Response)
	}
	return nil
}

func replExport(ctx context.Context, session *Session, file string) error {
	if file == "" {
		file = "conversation_export.json"
	}
	if err := session.Store().ExportFile(ctx, file); err != nil {
		return err
	}
	fmt.Printf("Conversation history exported to %s\n", file)
	return nil
}
