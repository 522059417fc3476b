package shell

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/kballard/go-shellquote"
	"github.com/rs/zerolog/log"

	"github.com/domino14/tpower/config"
	"github.com/domino14/tpower/dataset"
	"github.com/domino14/tpower/power"
)

var (
	errNoData            = errors.New("no data in this line")
	errWrongOptionSyntax = errors.New("wrong format; all options need arguments")
	errExit              = errors.New("exit requested")
)

type shellcmd struct {
	cmd     string
	args    []string
	options map[string]string
}

type ShellController struct {
	l      *readline.Instance
	out    io.Writer
	config *config.Config

	data      *dataset.Dataset
	options   *ShellOptions
	lastSweep []power.SweepPoint
}

func filterInput(r rune) (rune, bool) {
	switch r {
	// block CtrlZ feature
	case readline.CharCtrlZ:
		return r, false
	}
	return r, true
}

func showMessage(msg string, w io.Writer) {
	io.WriteString(w, msg)
	io.WriteString(w, "\n")
}

// NewShellController builds a controller writing to out. If the config
// names a data file it is loaded; otherwise the reference dataset is used.
func NewShellController(cfg *config.Config, out io.Writer) (*ShellController, error) {
	opts, err := optionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	sc := &ShellController{out: out, config: cfg, options: opts, data: dataset.Reference()}
	if path := cfg.GetString(config.ConfigDataFile); path != "" {
		if err := sc.loadData(path); err != nil {
			return nil, err
		}
	}
	return sc, nil
}

func (sc *ShellController) showMessage(msg string) {
	showMessage(msg, sc.out)
}

func (sc *ShellController) showError(err error) {
	sc.showMessage("Error: " + err.Error())
}

// loadData replaces the current dataset. Files that do not state a mean
// keep the current mu.
func (sc *ShellController) loadData(path string) error {
	d, err := dataset.Load(path)
	if err != nil {
		return err
	}
	if d.HasMu {
		sc.options.mu = d.Mu
	} else {
		d.Mu = sc.options.mu
	}
	sc.data = d
	sc.lastSweep = nil
	log.Debug().Str("path", path).Int("observations", d.Len()).Msg("loaded-dataset")
	return nil
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func extractFields(line string) (*shellcmd, error) {
	fields, err := shellquote.Split(line)
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, errNoData
	}
	cmd := fields[0]
	var args []string
	options := map[string]string{}
	for i := 1; i < len(fields); i++ {
		if strings.HasPrefix(fields[i], "-") && !isNumber(fields[i]) {
			if i == len(fields)-1 {
				return nil, errWrongOptionSyntax
			}
			options[strings.TrimLeft(fields[i], "-")] = fields[i+1]
			i++
			continue
		}
		args = append(args, fields[i])
	}
	return &shellcmd{cmd: cmd, args: args, options: options}, nil
}

func (sc *ShellController) dispatch(cmd *shellcmd) (*Response, error) {
	switch cmd.cmd {
	case "exit", "bye":
		return nil, errExit
	case "help":
		return sc.help(cmd)
	case "data":
		return sc.showData(cmd)
	case "load":
		return sc.load(cmd)
	case "save":
		return sc.save(cmd)
	case "set":
		return sc.set(cmd)
	case "power":
		return sc.power(cmd)
	case "sweep":
		return sc.sweep(cmd)
	case "hist":
		return sc.hist(cmd)
	case "export":
		return sc.export(cmd)
	}
	return nil, fmt.Errorf("command %v not found", strconv.Quote(cmd.cmd))
}

// Execute runs one command line. It returns errExit when the line asks to
// quit; command failures are printed and not returned.
func (sc *ShellController) Execute(line string) error {
	cmd, err := extractFields(line)
	if err == errNoData {
		return nil
	} else if err != nil {
		sc.showError(err)
		return nil
	}
	resp, err := sc.dispatch(cmd)
	if err == errExit {
		return err
	} else if err != nil {
		sc.showError(err)
		return nil
	}
	if resp != nil && resp.message != "" {
		io.WriteString(sc.out, resp.message)
		if !strings.HasSuffix(resp.message, "\n") {
			io.WriteString(sc.out, "\n")
		}
	}
	return nil
}

// Loop reads commands until exit, EOF or an interrupt on an empty line,
// then signals sig.
func (sc *ShellController) Loop(sig chan os.Signal) {
	l, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[31mtpower>\033[0m ",
		HistoryFile:     "/tmp/tpower_readline.tmp",
		EOFPrompt:       "exit",
		InterruptPrompt: "^C",

		HistorySearchFold:   true,
		FuncFilterInputRune: filterInput,
	})
	if err != nil {
		log.Error().Err(err).Msg("could not start readline")
		sig <- syscall.SIGINT
		return
	}
	sc.l = l
	sc.out = l.Stderr()
	defer sc.l.Close()

	for {
		line, err := sc.l.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				break
			}
			continue
		} else if err == io.EOF {
			break
		}
		if sc.Execute(strings.TrimSpace(line)) == errExit {
			break
		}
	}
	log.Debug().Msgf("Exiting readline loop...")
	sig <- syscall.SIGINT
}
