// Command pedalboard runs the instrument and voice effect chains on the
// default audio device with an interactive console.
//
// Usage:
//
//	pedalboard [flags]
//
// Examples:
//
//	pedalboard
//	pedalboard -in 2 -preset lead.json -track backing.mp3
//	pedalboard -host oto -track backing.wav -record take.wav
//	pedalboard -host null -headless -preset lead.json -record auto
//	pedalboard -midi any -log debug
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/cwbudde/algo-pedalboard/engine"
	"github.com/cwbudde/algo-pedalboard/internal/control"
	"github.com/cwbudde/algo-pedalboard/internal/host"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "pedalboard:", err)
		os.Exit(1)
	}
}

func run() error {
	def := engine.DefaultConfig()
	var (
		rate     = flag.Float64("rate", def.SampleRate, "sample rate in Hz")
		block    = flag.Int("block", def.BlockSize, "frames per callback")
		inputs   = flag.Int("in", def.InputChannels, "input channels")
		outputs  = flag.Int("out", def.OutputChannels, "output channels")
		backend  = flag.String("host", host.PortAudio, "audio backend: "+strings.Join(host.Names(), ", "))
		preset   = flag.String("preset", "", "preset JSON file to load at start")
		track    = flag.String("track", "", "backing track (WAV or MP3)")
		record   = flag.String("record", "", `record the output to this WAV file ("auto" picks a take name)`)
		midiPort = flag.String("midi", "", `MIDI input name to listen on ("any" for the first input)`)
		level    = flag.String("log", "info", "log level: debug, info, warn, error")
		debug    = flag.Bool("debug", false, "debug logging with source locations")
		headless = flag.Bool("headless", false, "run without the console until interrupted")
	)
	flag.Parse()

	logger, err := InitLogger(*level, *debug)
	if err != nil {
		return err
	}

	eng, err := engine.New(
		engine.WithSampleRate(*rate),
		engine.WithBlockSize(*block),
		engine.WithInputChannels(*inputs),
		engine.WithOutputChannels(*outputs),
		engine.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	if *preset != "" {
		issues, err := eng.LoadPreset(*preset)
		if err != nil {
			return err
		}
		for _, is := range issues {
			logger.Warn("preset entry skipped", "issue", is.String())
		}
	}
	if *track != "" {
		if err := eng.LoadTrackFile(*track); err != nil {
			return err
		}
	}

	h, err := host.New(*backend, logger)
	if err != nil {
		return err
	}
	if err := eng.Start(h); err != nil {
		return err
	}
	defer func() {
		if err := eng.Stop(); err != nil {
			logger.Error("shutdown", "err", err)
		}
	}()

	if *record != "" {
		path := *record
		if path == "auto" {
			path = ""
		}
		if _, err := eng.StartRecording(path); err != nil {
			return err
		}
	}

	if *midiPort != "" {
		port := *midiPort
		if port == "any" {
			port = ""
		}
		stop, err := control.ListenMIDI(eng, control.DefaultMIDIMap(), port, logger)
		if err != nil {
			logger.Warn("midi control unavailable", "err", err)
		} else {
			defer stop()
		}
	}

	if *headless {
		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()
		logger.Info("running headless; interrupt to stop")
		<-ctx.Done()
		return nil
	}

	return control.NewConsole(eng, os.Stdout).Run("pedalboard> ")
}
