// Package control is the operator surface of the engine: a line console
// and a MIDI control-change map. Both submit through the engine's control
// API and never block the render goroutine.
package control

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"

	"github.com/cwbudde/algo-pedalboard/dsp/effectchain"
	"github.com/cwbudde/algo-pedalboard/engine"
)

// ErrQuit is returned by Exec for the quit command.
var ErrQuit = errors.New("quit")

// Console executes text commands against an engine.
type Console struct {
	eng *engine.Engine
	out io.Writer
}

// NewConsole returns a console that prints to out.
func NewConsole(eng *engine.Engine, out io.Writer) *Console {
	return &Console{eng: eng, out: out}
}

type command struct {
	name     string
	usage    string
	min, max int // max < 0 means no limit
	run      func(c *Console, args []string) error
}

var commands []command

func init() {
	commands = []command{
		{"set", "set <channel> <effect> <param> <value>", 4, 4, (*Console).set},
		{"toggle", "toggle <channel> <effect> [on|off]", 2, 3, (*Console).toggle},
		{"order", "order <channel> [effect ...]", 1, -1, (*Console).order},
		{"show", "show <channel> [effect]", 1, 2, (*Console).show},
		{"effects", "effects <channel>", 1, 1, (*Console).effects},
		{"map", "map <instrument-input> <voice-input>", 2, 2, (*Console).mapInputs},
		{"input", "input <channel> on|off", 2, 2, (*Console).input},
		{"volume", "volume <0..2>", 1, 1, (*Console).volume},
		{"load", "load <preset.json>", 1, 1, (*Console).load},
		{"save", "save <preset.json>", 1, 1, (*Console).save},
		{"state", "state", 0, 0, (*Console).state},
		{"track", "track <file.wav|file.mp3>", 1, 1, (*Console).track},
		{"play", "play", 0, 0, func(c *Console, _ []string) error { return c.eng.TogglePlayback() }},
		{"stop", "stop", 0, 0, func(c *Console, _ []string) error { return c.eng.StopPlayback() }},
		{"seek", "seek <0..1>", 1, 1, (*Console).seek},
		{"trackvol", "trackvol <0..1.5>", 1, 1, (*Console).trackVolume},
		{"rec", "rec [path] | rec stop | rec pause | rec resume", 0, 1, (*Console).record},
		{"tuner", "tuner", 0, 0, (*Console).tuner},
		{"status", "status", 0, 0, (*Console).status},
		{"help", "help", 0, 0, (*Console).help},
		{"quit", "quit", 0, 0, func(*Console, []string) error { return ErrQuit }},
	}
}

// Exec runs one command line. Blank lines and lines starting with # do
// nothing.
func (c *Console) Exec(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}
	name, args := fields[0], fields[1:]
	if name == "exit" {
		name = "quit"
	}

	for _, cmd := range commands {
		if cmd.name != name {
			continue
		}
		if len(args) < cmd.min || (cmd.max >= 0 && len(args) > cmd.max) {
			return fmt.Errorf("usage: %s", cmd.usage)
		}
		return cmd.run(c, args)
	}
	return fmt.Errorf("unknown command: %s (try help)", name)
}

// Run reads commands with line editing until EOF or quit.
func (c *Console) Run(prompt string) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		AutoComplete:    completer(),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == io.EOF {
			return nil
		}
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if err != nil {
			return err
		}

		if err := c.Exec(line); err != nil {
			if errors.Is(err, ErrQuit) {
				return nil
			}
			fmt.Fprintln(c.out, err)
		}
	}
}

func completer() *readline.PrefixCompleter {
	var channel []readline.PrefixCompleterInterface
	for _, ch := range effectchain.Channels() {
		var fx []readline.PrefixCompleterInterface
		for _, name := range effectchain.DefaultOrder(ch) {
			fx = append(fx, readline.PcItem(name))
		}
		channel = append(channel, readline.PcItem(ch, fx...))
	}

	items := make([]readline.PrefixCompleterInterface, 0, len(commands))
	for _, cmd := range commands {
		switch cmd.name {
		case "set", "toggle", "order", "show", "effects", "input":
			items = append(items, readline.PcItem(cmd.name, channel...))
		default:
			items = append(items, readline.PcItem(cmd.name))
		}
	}
	return readline.NewPrefixCompleter(items...)
}

// ParseValue converts console text into a value for def. Switches accept
// on/off, true/false and numbers.
func ParseValue(def effectchain.ParamDef, s string) (effectchain.Value, error) {
	switch def.Kind {
	case effectchain.KindEnum:
		return effectchain.Text(s), nil
	case effectchain.KindBool:
		switch strings.ToLower(s) {
		case "on", "true", "yes":
			return effectchain.Bool(true), nil
		case "off", "false", "no":
			return effectchain.Bool(false), nil
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return effectchain.Value{}, fmt.Errorf("%s: %q is not a number", def.Name, s)
	}
	return effectchain.Number(f), nil
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on", "true", "1", "yes":
		return true, nil
	case "off", "false", "0", "no":
		return false, nil
	}
	return false, fmt.Errorf("want on or off, got %q", s)
}

func (c *Console) set(args []string) error {
	channel, effect, key := args[0], args[1], args[2]
	d, ok := effectchain.Describe(effect)
	if !ok {
		return fmt.Errorf("%w: %s", engine.ErrUnknownEffect, effect)
	}
	def, ok := d.Param(key)
	if !ok {
		return fmt.Errorf("%w: %s.%s", effectchain.ErrUnknownParam, effect, key)
	}
	v, err := ParseValue(def, args[3])
	if err != nil {
		return err
	}
	return c.eng.SetParam(channel, effect, key, v)
}

func (c *Console) toggle(args []string) error {
	channel, effect := args[0], args[1]
	enabled := !c.eng.IsEffectEnabled(channel, effect)
	if len(args) > 2 {
		on, err := parseSwitch(args[2])
		if err != nil {
			return err
		}
		enabled = on
	}
	if err := c.eng.ToggleEffect(channel, effect, enabled); err != nil {
		return err
	}
	fmt.Fprintf(c.out, "%s/%s %s\n", channel, effect, onOff(enabled))
	return nil
}

func (c *Console) order(args []string) error {
	if len(args) > 1 {
		return c.eng.SetChainOrder(args[0], args[1:])
	}
	order, err := c.eng.ChainOrder(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, strings.Join(order, " "))
	return nil
}

func (c *Console) show(args []string) error {
	descs, err := c.eng.Effects(args[0])
	if err != nil {
		return err
	}
	for _, d := range descs {
		if len(args) > 1 && d.Name != args[1] {
			continue
		}
		var params []string
		for _, def := range d.Params {
			v, err := c.eng.Param(args[0], d.Name, def.Name)
			if err != nil {
				return err
			}
			params = append(params, def.Name+"="+formatValue(def, v))
		}
		fmt.Fprintf(c.out, "%-24s %-3s %s\n", d.Name, onOff(c.eng.IsEffectEnabled(args[0], d.Name)), strings.Join(params, " "))
	}
	return nil
}

func (c *Console) effects(args []string) error {
	descs, err := c.eng.Effects(args[0])
	if err != nil {
		return err
	}
	for _, d := range descs {
		fmt.Fprintf(c.out, "%s (%s)\n", d.Name, d.Title)
		for _, def := range d.Params {
			switch def.Kind {
			case effectchain.KindEnum:
				fmt.Fprintf(c.out, "  %-16s %s\n", def.Name, strings.Join(def.Options, "|"))
			case effectchain.KindBool:
				fmt.Fprintf(c.out, "  %-16s on|off\n", def.Name)
			default:
				fmt.Fprintf(c.out, "  %-16s %g..%g (default %g)\n", def.Name, def.Min, def.Max, def.Default)
			}
		}
	}
	return nil
}

func formatValue(def effectchain.ParamDef, v effectchain.Value) string {
	if def.Kind == effectchain.KindBool {
		return onOff(v.Num != 0)
	}
	return v.String()
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func (c *Console) mapInputs(args []string) error {
	instrument, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("instrument input: %w", err)
	}
	voice, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("voice input: %w", err)
	}
	if err := c.eng.SetChannelMapping(instrument, voice); err != nil {
		return err
	}
	m := c.eng.ChannelMapping()
	fmt.Fprintf(c.out, "instrument=%d voice=%d\n", m.Instrument, m.Voice)
	return nil
}

func (c *Console) input(args []string) error {
	on, err := parseSwitch(args[1])
	if err != nil {
		return err
	}
	return c.eng.ToggleInputChannel(args[0], on)
}

func parseLevel(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", s)
	}
	return v, nil
}

func (c *Console) volume(args []string) error {
	v, err := parseLevel(args[0])
	if err != nil {
		return err
	}
	return c.eng.SetMasterVolume(v)
}

func (c *Console) trackVolume(args []string) error {
	v, err := parseLevel(args[0])
	if err != nil {
		return err
	}
	return c.eng.SetTrackVolume(v)
}

func (c *Console) seek(args []string) error {
	v, err := parseLevel(args[0])
	if err != nil {
		return err
	}
	return c.eng.SetPlaybackPosition(v)
}

func (c *Console) load(args []string) error {
	issues, err := c.eng.LoadPreset(args[0])
	if err != nil {
		return err
	}
	for _, is := range issues {
		fmt.Fprintln(c.out, "skipped", is)
	}
	return nil
}

func (c *Console) save(args []string) error { return c.eng.SavePreset(args[0]) }

func (c *Console) state([]string) error {
	data, err := json.MarshalIndent(c.eng.FullState(), "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, string(data))
	return nil
}

func (c *Console) track(args []string) error {
	if err := c.eng.LoadTrackFile(args[0]); err != nil {
		return err
	}
	t := c.eng.Track()
	fmt.Fprintf(c.out, "%s %.1fs\n", t.Name, t.Duration().Seconds())
	return nil
}

func (c *Console) record(args []string) error {
	arg := ""
	if len(args) == 1 {
		arg = args[0]
	}
	switch arg {
	case "stop":
		return c.eng.StopRecording()
	case "pause", "resume":
		rec := c.eng.Recorder()
		if rec == nil {
			return errors.New("not recording")
		}
		if arg == "pause" {
			return rec.Pause()
		}
		return rec.Resume()
	}

	rec, err := c.eng.StartRecording(arg)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.out, "recording to", rec.Path())
	return nil
}

func (c *Console) tuner([]string) error {
	r, ok := c.eng.TunerReading()
	switch {
	case !ok:
		fmt.Fprintln(c.out, "no reading yet")
	case !r.Valid:
		fmt.Fprintln(c.out, "--")
	default:
		fmt.Fprintf(c.out, "%s%d %+.0f cents (%.1f Hz)\n", r.Name, r.Octave, r.Cents, r.Frequency)
	}
	return nil
}

func (c *Console) status([]string) error {
	info := c.eng.PlaybackInfo()
	fmt.Fprintf(c.out, "track %s %.1f/%.1fs, master %.2f, track volume %.2f\n",
		info.State, info.Position, info.Duration, c.eng.MasterVolume(), c.eng.TrackVolume())
	if rec := c.eng.Recorder(); rec != nil {
		st := rec.Status()
		fmt.Fprintf(c.out, "recording %s %s %.1fs, %d dropped\n", st.Path, st.State, st.Elapsed.Seconds(), st.Dropped)
	}
	if n := c.eng.Rejected(); n > 0 {
		fmt.Fprintf(c.out, "%d commands dropped\n", n)
	}
	return nil
}

func (c *Console) help([]string) error {
	for _, cmd := range commands {
		fmt.Fprintln(c.out, " ", cmd.usage)
	}
	return nil
}
