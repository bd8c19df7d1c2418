package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/jdelaire/tgbot/core"
	"github.com/jdelaire/tgbot/core/api"
	"github.com/jdelaire/tgbot/internal/commandsync"
)

var (
	sendCaption   string
	sendReplyTo   int64
	sendParseMode string
	sendButtons   []string

	cmdNames        []string
	cmdDescriptions []string
	cmdFile         string
)

var meCmd = &cobra.Command{
	Use:   "me",
	Short: "Show the bot account (getMe)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, client, err := setup()
		if err != nil {
			return err
		}
		me, err := client.GetMe(cmd.Context())
		if err != nil {
			return err
		}
		return printJSON(cmd.OutOrStdout(), me)
	},
}

var commandsCmd = &cobra.Command{
	Use:   "commands",
	Short: "Show or replace the bot's command list",
}

var commandsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the published command list (getMyCommands)",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, client, err := setup()
		if err != nil {
			return err
		}
		cmds, err := client.GetCommands(cmd.Context())
		if err != nil {
			return err
		}
		for _, c := range cmds {
			fmt.Fprintf(cmd.OutOrStdout(), "/%s - %s\n", c.Command, c.Description)
		}
		return nil
	},
}

var commandsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Replace the command list (setMyCommands)",
	Example: `  tgbot commands set --file commands.json
  tgbot commands set -c start -d "Start the bot" -c help -d "Show help"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, client, err := setup()
		if err != nil {
			return err
		}

		if cmdFile != "" {
			cmds, err := commandsync.LoadCommands(cmdFile)
			if err != nil {
				return err
			}
			if cmds == nil {
				return fmt.Errorf("commands file %s not found", cmdFile)
			}
			_, err = client.SetCommands(cmd.Context(), cmds)
			return err
		}

		_, err = client.SetCommandPairs(cmd.Context(), cmdNames, cmdDescriptions)
		return err
	},
}

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Send a message",
}

var sendTextCmd = &cobra.Command{
	Use:   "text <chat-id> <text>",
	Short: "Send a text message",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		chatID, err := parseID("chat-id", args[0])
		if err != nil {
			return err
		}
		_, _, client, err := setup()
		if err != nil {
			return err
		}
		r, err := client.SendText(cmd.Context(), chatID, args[1], sendOptions()...)
		return printReply(cmd.OutOrStdout(), r, err)
	},
}

var sendMediaCmd = &cobra.Command{
	Use:   "media <kind> <chat-id> <file-id-or-url>",
	Short: "Send a file: animation, audio, document, photo, sticker, video, video_note or voice",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		chatID, err := parseID("chat-id", args[1])
		if err != nil {
			return err
		}
		_, _, client, err := setup()
		if err != nil {
			return err
		}
		r, err := client.SendMedia(cmd.Context(), core.Kind(args[0]), chatID, args[2], sendOptions()...)
		return printReply(cmd.OutOrStdout(), r, err)
	},
}

var sendLocationCmd = &cobra.Command{
	Use:   "location <chat-id> <longitude> <latitude>",
	Short: "Send a map point",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		chatID, err := parseID("chat-id", args[0])
		if err != nil {
			return err
		}
		lon, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid longitude %q", args[1])
		}
		lat, err := strconv.ParseFloat(args[2], 64)
		if err != nil {
			return fmt.Errorf("invalid latitude %q", args[2])
		}
		_, _, client, err := setup()
		if err != nil {
			return err
		}
		r, err := client.SendLocation(cmd.Context(), chatID, lon, lat, sendOptions()...)
		return printReply(cmd.OutOrStdout(), r, err)
	},
}

var forwardCmd = &cobra.Command{
	Use:   "forward <from-chat-id> <message-id> <to-chat-id>",
	Short: "Forward a message between chats",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := make([]int64, 3)
		for i, name := range []string{"from-chat-id", "message-id", "to-chat-id"} {
			id, err := parseID(name, args[i])
			if err != nil {
				return err
			}
			ids[i] = id
		}
		_, _, client, err := setup()
		if err != nil {
			return err
		}
		r, err := client.ForwardMessage(cmd.Context(), ids[1], ids[0], ids[2])
		return printReply(cmd.OutOrStdout(), r, err)
	},
}

func init() {
	commandsSetCmd.Flags().StringArrayVarP(&cmdNames, "command", "c", nil, "command name (repeatable)")
	commandsSetCmd.Flags().StringArrayVarP(&cmdDescriptions, "description", "d", nil, "description for the matching --command (repeatable)")
	commandsSetCmd.Flags().StringVar(&cmdFile, "file", "", "JSON file with [{\"command\",\"description\"}] entries")
	commandsSetCmd.MarkFlagsMutuallyExclusive("file", "command")
	commandsCmd.AddCommand(commandsListCmd, commandsSetCmd)

	for _, c := range []*cobra.Command{sendTextCmd, sendMediaCmd, sendLocationCmd} {
		c.Flags().Int64Var(&sendReplyTo, "reply-to", 0, "message id to reply to")
	}
	for _, c := range []*cobra.Command{sendTextCmd, sendMediaCmd} {
		c.Flags().StringVar(&sendParseMode, "parse-mode", "", "HTML, Markdown or MarkdownV2")
	}
	sendTextCmd.Flags().StringArrayVar(&sendButtons, "button", nil, "inline keyboard button label (repeatable)")
	sendMediaCmd.Flags().StringVar(&sendCaption, "caption", "", "media caption")
	sendCmd.AddCommand(sendTextCmd, sendMediaCmd, sendLocationCmd)

	rootCmd.AddCommand(meCmd, commandsCmd, sendCmd, forwardCmd)
}

func sendOptions() []api.SendOption {
	var opts []api.SendOption
	if sendCaption != "" {
		opts = append(opts, api.WithCaption(sendCaption))
	}
	if sendReplyTo != 0 {
		opts = append(opts, api.WithReplyTo(sendReplyTo))
	}
	if sendParseMode != "" {
		opts = append(opts, api.WithParseMode(sendParseMode))
	}
	if len(sendButtons) > 0 {
		opts = append(opts, api.WithButtons(sendButtons...))
	}
	return opts
}

func parseID(name, s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be an integer", name, s)
	}
	return id, nil
}

// printReply prints the result of a successful call, or the raw body when
// the platform answered with something other than JSON.
func printReply(w io.Writer, r *api.Reply, err error) error {
	if err != nil {
		return err
	}
	if !r.Decoded {
		_, err := fmt.Fprintf(w, "%s\n", r.Raw)
		return err
	}
	return printJSON(w, r.Result)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
