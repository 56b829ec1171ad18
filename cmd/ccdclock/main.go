package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"

	yml "gopkg.in/yaml.v2"
)

var (
	// Version is the version number.  Typically injected via ldflags with git build
	Version = "1"

	// ConfigFileName is what it sounds like
	ConfigFileName = "ccdclock.yml"
	k              = koanf.New(".")
)

func setupconfig() {
	k.Load(structs.Provider(DefaultConfig(), "koanf"), nil)
	if err := k.Load(file.Provider(ConfigFileName), yaml.Parser()); err != nil {
		errtxt := err.Error()
		if !strings.Contains(errtxt, "no such") { // file missing, who cares
			log.Fatalf("error loading config: %v", err)
		}
	}
}

func config() Config {
	c := Config{}
	err := k.Unmarshal("", &c)
	if err != nil {
		log.Fatal(err)
	}
	return c
}

func root() {
	str := `ccdclock compiles CCD clock recipes into opcode tables for the controller's
FPGA sequencer and serves timing diagrams of them over HTTP

Usage:
	ccdclock <command> [arguments]

Commands:
	run
	table [recipe]
	diagram [recipe] [phase]
	trace <recipe> <phase> <signal>
	fits [recipe]
	help
	mkconf
	conf
	version`
	fmt.Println(str)
}

func help() {
	str := `ccdclock is amenable to configuration via its .yaml file.  For a primer on YAML, see
https://yaml.org/start.html

The built-in recipes are readout, wipe and idle.  More are loaded from the
files listed under RecipeFiles, e.g.

	recipes:
	  - name: flush
	    holdOn: [DG]
	    pre:
	      - {for: 10, on: [P1, S1, S2, S3]}
	    pixel:
	      - {for: 4}
	    post:
	      - {for: 20, on: [P2]}
	      - {for: 20, off: [P1]}

Each step turns lines off, then on, and holds the result "for" ticks.  "at"
places a change at an absolute tick and "end" closes the phase.

Phases are pre, pixel and post; pixel is the default.  A row is the pre-roll,
the pixel phase PixelsPerRow times, then the post-roll RowBinning times.

Lines, from bit 31 down to bit 15:
	P1 P2 P3 TG S1 S2 S3 SW RG DG IR IP IM CLAMP CONV STROBE SYNC

run serves, under Addr:
	GET /signals
	GET /recipes
	GET /recipes/{name}/table
	GET /recipes/{name}/diagram?phase=&tickdiv=&cutafter=&format=wavedrom
	GET /recipes/{name}/trace?phase=&signal=&initial=false
	GET /recipes/{name}/waveform.csv?phase=
	GET /recipes/{name}/fits
	GET /route-list`
	fmt.Println(str)
}

func mkconf() {
	c := config()
	f, err := os.Create(ConfigFileName)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()
	err = yml.NewEncoder(f).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func printconf() {
	c := config()
	err := yml.NewEncoder(os.Stdout).Encode(c)
	if err != nil {
		log.Fatal(err)
	}
}

func pversion() {
	fmt.Printf("ccdclock version %v\n", Version)
}

func run() {
	c := config()
	mux, err := BuildMux(c)
	if err != nil {
		log.Fatal(err)
	}
	log.Println("now listening for requests at ", c.Addr)
	log.Fatal(http.ListenAndServe(c.Addr, mux))
}

func main() {
	var cmd string
	args := os.Args
	if len(args) == 1 {
		root()
		return
	}
	setupconfig()
	cmd = args[1]
	cmd = strings.ToLower(cmd)
	var err error
	switch cmd {
	case "help":
		help()
	case "mkconf":
		mkconf()
	case "conf":
		printconf()
	case "run":
		run()
	case "version":
		pversion()
	case "table":
		err = WriteTable(os.Stdout, config(), args[2:])
	case "diagram":
		err = WriteDiagram(os.Stdout, config(), args[2:])
	case "trace":
		err = WriteTrace(os.Stdout, config(), args[2:])
	case "fits":
		err = WriteFITS(os.Stdout, config(), args[2:])
	default:
		log.Fatal("unknown command")
	}
	if err != nil {
		log.Fatal(err)
	}
}
