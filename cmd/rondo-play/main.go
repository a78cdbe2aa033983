package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rondo-audio/rondo"
	"github.com/rondo-audio/rondo/api"
	"github.com/rondo-audio/rondo/cmd"
	"github.com/rondo-audio/rondo/engine"
	"github.com/rondo-audio/rondo/generate"
	"github.com/rondo-audio/rondo/gomidi"
	"github.com/rondo-audio/rondo/level"
	"github.com/rondo-audio/rondo/oto"
	"github.com/rondo-audio/rondo/report"
	"github.com/rondo-audio/rondo/version"
)

func main() {
	configFile := flag.String("config", "", "Read the configuration from a .yml or .json file instead of using the builtin one.")
	seed := flag.Uint64("seed", 0, "Seed of the pattern generator; overrides the seed of the configuration.")
	rate := flag.Int("rate", 0, "Sample rate in Hz; overrides the sample rate of the configuration.")
	tempo := flag.Float64("tempo", 0, "Tempo scale; overrides the tempo of the configuration.")
	presetDir := flag.String("presets", generate.UserPresetDir(), "Directory whose presets/*.yml files add to or replace the builtin layer presets.")
	play := flag.Bool("p", false, "Play in real time until Esc or q is pressed (default behaviour when no other output is defined).")
	wavOut := flag.Bool("w", false, "Render to a .wav file. By default, saves stereo float32 samples.")
	rawOut := flag.Bool("r", false, "Render to a .raw file. By default, saves stereo float32 samples.")
	pcm := flag.Bool("c", false, "Convert audio to 16-bit signed PCM when outputting or playing.")
	duration := flag.Float64("d", 60, "Length of the rendered files, in seconds.")
	directory := flag.String("o", "", "Directory where to output all files. The directory and its parents are created if needed. By default, files go to the working directory.")
	printReport := flag.Bool("print", false, "Print the patterns of every track. With files, the patterns playing at the end of the render are printed.")
	templates := flag.String("templates", "", "Directory of .tmpl files replacing the builtin report templates; must define status.tmpl.")
	httpAddr := flag.String("http", "", "Serve a read-only view of the engine on this address while playing, e.g. localhost:8080.")
	midiOut := flag.String("midi-out", "", "Mirror the played notes to the first MIDI output whose name starts with this prefix; * takes the first output.")
	dumpConfig := flag.Bool("dump-config", false, "Print the configuration, after the overrides, as .yml and exit.")
	help := flag.Bool("h", false, "Show help.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if *help || flag.NArg() > 0 {
		flag.Usage()
		os.Exit(0)
	}
	cfg := rondo.DefaultConfig()
	if *configFile != "" {
		f, err := os.Open(*configFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not open config: %v\n", err)
			os.Exit(1)
		}
		cfg, err = rondo.ReadConfig(f)
		f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not read config %v: %v\n", *configFile, err)
			os.Exit(1)
		}
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "seed":
			cfg.Seed = *seed
		case "rate":
			cfg.SampleRate = *rate
		case "tempo":
			cfg.TempoScale = tempo
		}
	})
	if *dumpConfig {
		b, err := cfg.Marshal()
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		os.Stdout.Write(b)
		os.Exit(0)
	}
	presets, err := generate.LoadPresets(*presetDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load presets: %v\n", err)
		os.Exit(1)
	}
	if !*rawOut && !*wavOut && !*printReport {
		*play = true // if the user gives nothing to output, then the default behaviour is just to play
	}
	if *wavOut || *rawOut || (*printReport && !*play) {
		if err := render(cfg, presets, *duration, *wavOut, *rawOut, *pcm, *printReport, *directory, *configFile, *templates); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}
	if *play {
		if err := playLive(cfg, presets, *pcm, *printReport, *httpAddr, *midiOut, *templates); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}
}

func render(cfg rondo.Config, presets generate.Presets, duration float64, wavOut, rawOut, pcm, printReport bool, directory, configFile, templates string) error {
	e, err := engine.NewWithPresets(cfg, presets)
	if err != nil {
		return err
	}
	defer e.Close()
	frames := int(duration * float64(e.SampleRate()))
	if frames < 0 {
		return fmt.Errorf("negative duration %v", duration)
	}
	buffer, err := rondo.Fill(e, frames)
	if err != nil {
		return fmt.Errorf("rendering failed: %v", err)
	}
	output := func(extension string, contents []byte) error {
		name := "rondo"
		if configFile != "" {
			_, name = filepath.Split(configFile)
			name = strings.TrimSuffix(name, filepath.Ext(name))
		}
		dir := directory
		if dir == "" {
			var err error
			dir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("could not get working directory, specify the output directory explicitly: %v", err)
			}
		}
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("could not create output directory %v: %v", dir, err)
		}
		f := filepath.Join(dir, name+extension)
		if err := os.WriteFile(f, contents, 0644); err != nil {
			return fmt.Errorf("could not write file %v: %v", f, err)
		}
		return nil
	}
	if rawOut {
		raw, err := buffer.Raw(pcm)
		if err != nil {
			return fmt.Errorf("could not generate .raw file: %v", err)
		}
		if err := output(".raw", raw); err != nil {
			return fmt.Errorf("error outputting .raw file: %v", err)
		}
	}
	if wavOut {
		wav, err := buffer.Wav(e.SampleRate(), pcm)
		if err != nil {
			return fmt.Errorf("could not generate .wav file: %v", err)
		}
		if err := output(".wav", wav); err != nil {
			return fmt.Errorf("error outputting .wav file: %v", err)
		}
	}
	lv := level.Measure(buffer)
	p := message.NewPrinter(language.English)
	p.Fprintf(os.Stderr, "rendered %d frames (%.1f s), peak %.1f / %.1f dB, rms %.1f / %.1f dB\n",
		frames, duration, lv.Peak[0], lv.Peak[1], lv.RMS[0], lv.RMS[1])
	if printReport {
		return printStatus(e, templates)
	}
	return nil
}

func playLive(cfg rondo.Config, presets generate.Presets, pcm, printReport bool, httpAddr, midiOut, templates string) error {
	e, err := engine.NewWithPresets(cfg, presets)
	if err != nil {
		return err
	}
	defer e.Close()
	if printReport {
		if err := printStatus(e, templates); err != nil {
			return err
		}
	}
	if midiOut != "" {
		prefix := midiOut
		if prefix == "*" {
			prefix = ""
		}
		out, err := cmd.OpenMidiOutput(prefix)
		if err != nil {
			return fmt.Errorf("could not open MIDI output: %v", err)
		}
		defer out.Close()
		onsets := make(chan engine.Onset, 256)
		done := make(chan struct{})
		finished := make(chan struct{})
		e.SetOnsets(onsets)
		go func() {
			defer close(finished)
			if err := gomidi.NewForwarder(out, cfg.Tempo()).Run(onsets, done); err != nil {
				log.Printf("MIDI output stopped: %v", err)
			}
		}()
		defer func() { close(done); <-finished }()
	}
	if httpAddr != "" {
		h, err := api.NewHandler(e)
		if err != nil {
			return err
		}
		go func() {
			log.Printf("serving the engine on http://%v", httpAddr)
			if err := http.ListenAndServe(httpAddr, h); err != nil {
				log.Printf("http server stopped: %v", err)
			}
		}()
	}
	audioContext, err := oto.NewContext(e.SampleRate(), pcm)
	if err != nil {
		return fmt.Errorf("could not acquire oto AudioContext: %v", err)
	}
	defer audioContext.Close()
	e.Start()
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	defer signal.Stop(sig)
	keys, restore := watchKeys()
	fmt.Fprintf(os.Stderr, "playing, press Esc or q to stop\r\n")
	player := audioContext.Play(e)
	stopped := make(chan struct{})
	go func() {
		player.Wait()
		close(stopped)
	}()
	select {
	case <-keys:
	case <-sig:
	case <-stopped:
	}
	restore()
	if err := player.Close(); err != nil {
		return err
	}
	if err := player.Err(); err != nil {
		return fmt.Errorf("playback stopped: %v", err)
	}
	return nil
}

func printStatus(e *engine.Engine, templates string) error {
	var r *report.Reporter
	var err error
	if templates != "" {
		r, err = report.NewFromTemplates(templates)
	} else {
		r, err = report.New()
	}
	if err != nil {
		return err
	}
	return r.Status(os.Stdout, e.Status())
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Rondo plays endless, slowly evolving generative music.\nUsage: %s [flags]\n", os.Args[0])
	flag.PrintDefaults()
}
