package commands

import (
	"errors"
	"time"

	"gamekeeper/internal/notify"
	"gamekeeper/internal/output"
	"gamekeeper/internal/ui"
)

// RunNotifyTest sends a test notification to every configured target.
func RunNotifyTest() {
	cfg := mustLoadConfig()

	notifier := newNotifier(cfg)
	if notifier == nil {
		output.PrintError(errors.New("no notification target configured (DISCORD_WEBHOOK_URL, NOTIFY_HOOK)"))
		return
	}

	ui.ShowInfo("Sending test notification via %s", notifier.Name())
	err := notifier.Send(notify.Notification{
		Title:       "gamekeeper test notification",
		Description: "Game update notifications are configured correctly.",
		Color:       0x10B981,
		Fields: []notify.Field{
			{Name: "Server", Value: orNone(cfg.ServerID), Inline: true},
			{Name: "Auto restart", Value: onOff(cfg.AutoRestart), Inline: true},
		},
		Timestamp: time.Now(),
	})
	if err != nil {
		output.PrintError(err)
		return
	}

	output.Print(map[string]string{"notifier": notifier.Name()}, func() {
		ui.ShowSuccess("Test notification sent")
	})
}

func orNone(s string) string {
	if s == "" {
		return "(not set)"
	}
	return s
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
