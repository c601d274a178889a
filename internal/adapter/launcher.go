package adapter

import (
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Launcher launches stream URLs in an external player
type Launcher struct {
	command string   // configured player command, empty for auto-detection
	args    []string // additional arguments for the player
	goos    string
	logger  *slog.Logger

	// start runs a prepared command; replaced in tests
	start func(cmd *exec.Cmd) error
	// lookPath resolves a command in PATH; replaced in tests
	lookPath func(file string) (string, error)
}

// launchPath defines a single way to launch a player
type launchPath struct {
	path      string   // Command path: "mpv", "vlc", or "open-a:AppName"
	openFlags []string // For "open-a:" paths only - flags for macOS open command (e.g., ["-n"])
}

// players maps a player name to its launch paths per platform, tried in order
var players = map[string]map[string][]launchPath{
	"mpv": {
		"darwin":  {{path: "mpv"}},
		"linux":   {{path: "mpv"}},
		"windows": {{path: "mpv"}},
	},
	"vlc": {
		"darwin": {
			{path: "vlc"},
			{path: "open-a:VLC"},
		},
		"linux":   {{path: "vlc"}},
		"windows": {{path: "vlc"}},
	},
	"iina": {
		"darwin": {{path: "open-a:IINA", openFlags: []string{"-n"}}},
	},
	"celluloid": {
		"linux": {{path: "celluloid"}},
	},
	"potplayer": {
		"windows": {{path: "PotPlayerMini64.exe"}, {path: "PotPlayerMini.exe"}},
	},
}

// candidatePlayers defines the preferred player order for each platform
var candidatePlayers = map[string][]string{
	"darwin":  {"iina", "vlc", "mpv"},
	"linux":   {"mpv", "celluloid", "vlc"},
	"windows": {"vlc", "mpv", "potplayer"},
}

// NewLauncher creates a new Launcher
func NewLauncher(command string, args []string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command:  command,
		args:     args,
		goos:     runtime.GOOS,
		logger:   logger,
		start:    func(cmd *exec.Cmd) error { return cmd.Start() },
		lookPath: exec.LookPath,
	}
}

// Launch opens a stream URL in the configured player, a detected player,
// or the system default handler, in that order
func (l *Launcher) Launch(url string) error {
	// Tier 1: User configured a specific player
	if l.command != "" {
		l.logger.Info("using configured player", "command", l.command)
		return l.start(l.configuredCommand(url))
	}

	// Tier 2: Try candidate chain (IINA → VLC → mpv on macOS, etc.)
	if name, err := l.detectAndLaunch(url); err == nil {
		l.logger.Info("launched with detected player", "player", name)
		return nil
	}

	// Tier 3: Fall back to system default (open/xdg-open/start)
	l.logger.Info("no candidate players found, using system default")
	return l.start(l.defaultCommand(url))
}

// configuredCommand builds the command for the configured player
func (l *Launcher) configuredCommand(url string) *exec.Cmd {
	args := append([]string{}, l.args...)

	// On macOS, launch GUI apps with 'open -a' if the command is not in PATH
	if l.goos == "darwin" {
		if _, err := l.lookPath(l.command); err != nil {
			openFlags := []string{}
			base := strings.ToLower(filepath.Base(l.command))
			base = strings.TrimSuffix(base, filepath.Ext(base))
			for _, lp := range players[base]["darwin"] {
				if strings.HasPrefix(lp.path, "open-a:") {
					openFlags = lp.openFlags
					break
				}
			}
			l.logger.Info("using macOS 'open -a' to launch GUI app", "app", l.command)
			return exec.Command("open", openArgs(l.command, url, args, openFlags)...)
		}
	}

	// URL goes at the end
	return exec.Command(l.command, append(args, url)...)
}

// detectAndLaunch tries candidate players in order.
// Returns the player name that succeeded.
func (l *Launcher) detectAndLaunch(url string) (string, error) {
	candidates, ok := candidatePlayers[l.goos]
	if !ok {
		candidates = candidatePlayers["linux"]
	}

	for _, name := range candidates {
		for _, lp := range players[name][l.goos] {
			var err error
			if strings.HasPrefix(lp.path, "open-a:") {
				app := strings.TrimPrefix(lp.path, "open-a:")
				// Run waits so a missing app is reported
				err = exec.Command("open", openArgs(app, url, l.args, lp.openFlags)...).Run()
			} else if _, err = l.lookPath(lp.path); err == nil {
				err = l.start(exec.Command(lp.path, append(append([]string{}, l.args...), url)...))
			}

			if err == nil {
				return name, nil
			}
			l.logger.Debug("launch path not available", "player", name, "path", lp.path, "error", err)
		}
	}

	return "", fmt.Errorf("no candidate players found")
}

// defaultCommand opens the URL using the system default handler
func (l *Launcher) defaultCommand(url string) *exec.Cmd {
	l.logger.Info("launching with system default", "os", l.goos)
	switch l.goos {
	case "darwin":
		return exec.Command("open", url)
	case "windows":
		return exec.Command("cmd", "/c", "start", "", url)
	default:
		return exec.Command("xdg-open", url)
	}
}

// openArgs builds arguments for macOS "open -a"
func openArgs(app, url string, playerArgs, openFlags []string) []string {
	args := append([]string{}, openFlags...)
	args = append(args, "-a", app)
	if len(playerArgs) > 0 {
		args = append(args, "--args")
		args = append(args, playerArgs...)
	}
	return append(args, url)
}
