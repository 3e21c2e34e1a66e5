package main

import (
	_ "embed"
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/hazard/api"
	"github.com/sarchlab/hazard/report"
)

//go:embed classic.asm
var classicKernel string

func main() {
	driver := api.DriverBuilder{}.
		WithRegisters(32).
		WithLogger(log.StandardLogger()).
		Build("Classic")

	err := driver.MapProgram(strings.NewReader(classicKernel))
	if err != nil {
		log.Fatal(err)
	}

	diags := driver.Run()

	r := report.GenerateReport("classic", driver.Tracker(), diags)
	r.WriteTable(os.Stdout)

	err = r.SaveReportToFile("classic_deps.txt")
	if err != nil {
		log.Fatal(err)
	}

	atexit.Exit(0)
}
