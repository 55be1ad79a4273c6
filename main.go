// coachdesk - a terminal admin console for the coaching platform's
// client messaging.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/coachdesk-tui/internal/api"
	"github.com/jeranaias/coachdesk-tui/internal/chatwin"
	"github.com/jeranaias/coachdesk-tui/internal/config"
	"github.com/jeranaias/coachdesk-tui/internal/live"
	"github.com/jeranaias/coachdesk-tui/internal/model"
	"github.com/jeranaias/coachdesk-tui/internal/prefs"
	"github.com/jeranaias/coachdesk-tui/internal/store"
	"github.com/jeranaias/coachdesk-tui/internal/ui/chat"
	"github.com/jeranaias/coachdesk-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.4.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "--version" || os.Args[1] == "-v") {
		fmt.Printf("coachdesk %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	dir, err := config.Dir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	// All logging goes to a file; stdout belongs to the TUI.
	logFile, err := os.OpenFile(filepath.Join(dir, "coachdesk.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)
	log.Printf("coachdesk %s starting", Version)

	prefStore, err := prefs.Open(filepath.Join(dir, "prefs.db"))
	if err != nil {
		return err
	}
	defer prefStore.Close()

	// The credential is resolved fresh on every API call and socket
	// handshake: a token saved at runtime or a hot-reloaded config takes
	// effect without a restart.
	var cfgMu sync.RWMutex
	current := cfg
	credential := func() string {
		if tok, err := prefStore.Get(prefs.KeyCredential); err == nil && tok != "" {
			return tok
		}
		cfgMu.RLock()
		defer cfgMu.RUnlock()
		return current.Server.Token
	}

	client := api.NewClient(cfg.Server.BaseURL, credential)
	conn := live.NewConn(cfg.Server.SocketURL, credential)
	defer conn.Disconnect()

	st := store.NewMessageStore(client, cfg.Chat.MessagesPerPage)
	releaseStore := st.Attach(conn)
	defer releaseStore()

	mgr := chatwin.NewManager(st, client, cfg.Chat.MessagesPerPage,
		cfg.UI.MaxOpenWindows, cfg.UI.CollapseAutoOpened)
	releaseMgr := mgr.Attach()
	defer releaseMgr()

	theme := styles.NewTheme()
	root := chat.New(cfg, st, mgr, conn, theme, prefStore)
	program := tea.NewProgram(root, tea.WithAltScreen())
	root.SetSender(program.Send)

	// Forward subsystem change signals into the update loop.
	releaseRoster := st.OnRosterChanged(func() {
		program.Send(chat.StoreChangedMsg{})
	})
	defer releaseRoster()
	releaseLive := st.OnNewMessageReceived(func(msg *model.Message, _ *model.Conversation) {
		program.Send(chat.LiveMessageMsg{ConversationID: msg.ConversationID})
	})
	defer releaseLive()
	mgr.OnChange(func() {
		program.Send(chat.PanelsChangedMsg{})
	})
	conn.OnStateChange(func(s live.State) {
		program.Send(chat.ConnStateMsg{State: s})
	})

	// Hot-reload the config file; endpoint changes need a restart, but
	// tunables and the credential pick up live.
	if path, perr := config.Path(); perr == nil {
		watcher, werr := config.NewWatcher(path, func(fresh *config.Config) {
			cfgMu.Lock()
			current = fresh
			cfgMu.Unlock()
			log.Printf("config reloaded from %s", path)
		})
		if werr != nil {
			log.Printf("config watch unavailable: %v", werr)
		} else {
			go watcher.Watch()
			defer watcher.Close()
		}
	}

	_, err = program.Run()
	return err
}
