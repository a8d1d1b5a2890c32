// SPDX-License-Identifier: GPL-3.0

// dcfsim runs one discrete-event 802.11 DCF/CSMA-CA simulation scenario
// from a pair of CSV input files and prints a one-line summary at stop
// time (spec section 6.2).
package main

import (
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	charm "github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"github.com/wnsim/dcfsim/internal/agent"
	"github.com/wnsim/dcfsim/internal/bus"
	"github.com/wnsim/dcfsim/internal/channel"
	"github.com/wnsim/dcfsim/internal/config"
	"github.com/wnsim/dcfsim/internal/engine"
	"github.com/wnsim/dcfsim/internal/ids"
	"github.com/wnsim/dcfsim/internal/node"
	"github.com/wnsim/dcfsim/internal/report"
	"github.com/wnsim/dcfsim/internal/scenario"
	"github.com/wnsim/dcfsim/internal/simclock"
	"github.com/wnsim/dcfsim/internal/simlog"
	"github.com/wnsim/dcfsim/internal/stats"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

// interBSSThresholdDB is the mutual-RSSI cutoff above which the central
// controller treats two BSSs as colliding (spec 4.5), matching the OBSS-PD
// range node/rx.go uses for its own overlapping-BSS detection.
const interBSSThresholdDB = -82.0

// cliArgs is the parsed positional-argument contract of spec 6.2: the
// 10-positional full form, or the 4-positional short form that takes the
// remaining fields (logging switches, simulation-time, random-seed) from
// the system CSV's own row instead.
type cliArgs struct {
	systemFile       string
	nodesFile        string
	scriptOutputFile string
	simulationCode   string

	haveLogFlags bool
	writeSystemLogs bool
	writeNodeLogs   bool
	printSystemLogs bool
	printNodeLogs   bool

	haveRunParams bool
	simulationTime float64
	randomSeed     int64
}

func parseCLIArgs(positional []string) (cliArgs, error) {
	var a cliArgs
	switch len(positional) {
	case 4:
		a.systemFile, a.nodesFile, a.scriptOutputFile, a.simulationCode = positional[0], positional[1], positional[2], positional[3]
	case 10:
		a.systemFile, a.nodesFile, a.scriptOutputFile, a.simulationCode = positional[0], positional[1], positional[2], positional[3]
		a.haveLogFlags = true
		a.writeSystemLogs = positional[4] == "1"
		a.writeNodeLogs = positional[5] == "1"
		a.printSystemLogs = positional[6] == "1"
		a.printNodeLogs = positional[7] == "1"
		var err error
		if a.simulationTime, err = parseFloat(positional[8], "simulation-time"); err != nil {
			return a, err
		}
		var seed int64
		if seed, err = parseInt(positional[9], "random-seed"); err != nil {
			return a, err
		}
		a.randomSeed = seed
		a.haveRunParams = true
	default:
		return a, fmt.Errorf("expected 4 or 10 positional arguments, got %d", len(positional))
	}
	return a, nil
}

func parseFloat(s, name string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid number %q", name, s)
	}
	return v, nil
}

func parseInt(s, name string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", name, s)
	}
	return v, nil
}

func run(argv []string) int {
	fs := pflag.NewFlagSet("dcfsim", pflag.ContinueOnError)
	configPath := fs.String("config", "", "path to daemon YAML configuration file")
	agentsFile := fs.String("agents", "", "path to the optional per-agent CSV file (spec 4.4)")
	logLevel := fs.String("log-level", "info", "console log level (debug, info, warn, error)")
	if err := fs.Parse(argv); err != nil {
		if err == pflag.ErrHelp {
			return 0
		}
		fmt.Fprintln(os.Stderr, "dcfsim:", err)
		return 2
	}

	args, err := parseCLIArgs(fs.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, "dcfsim:", err)
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "dcfsim: configuration error:", err)
		return 1
	}

	runID := uuid.New().String()

	level, err := charm.ParseLevel(*logLevel)
	if err != nil {
		level = charm.InfoLevel
	}
	consoleLog := simlog.New(os.Stderr, level)
	consoleLog.Infof("starting run %s (simulation-code=%s)", runID, args.simulationCode)

	if err := os.MkdirAll(cfg.Output.Directory, 0o755); err != nil {
		fmt.Fprintln(os.Stderr, "dcfsim: creating output directory:", err)
		return 1
	}

	sysFile, err := os.Open(args.systemFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "dcfsim:", err)
		return 1
	}
	defer sysFile.Close()
	sysRows, err := scenario.LoadSystem(sysFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "dcfsim: system file:", err)
		return 1
	}
	if len(sysRows) == 0 {
		fmt.Fprintln(os.Stderr, "dcfsim: system file has no data rows")
		return 1
	}
	sys := sysRows[0]

	writeSystemLogs, writeNodeLogs := sys.WriteSystemLogs, sys.WriteNodeLogs
	simTime, seed := sys.SimulationTime, sys.RandomSeed
	if args.haveLogFlags {
		writeSystemLogs, writeNodeLogs = args.writeSystemLogs, args.writeNodeLogs
	}
	if args.haveRunParams {
		simTime, seed = args.simulationTime, args.randomSeed
	}
	if simTime <= 0 {
		fmt.Fprintln(os.Stderr, "dcfsim: simulation-time must be > 0")
		return 1
	}

	nodesFile, err := os.Open(args.nodesFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "dcfsim:", err)
		return 1
	}
	defer nodesFile.Close()
	nodeRows, err := scenario.LoadNodes(nodesFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "dcfsim: nodes file:", err)
		return 1
	}
	if len(nodeRows) == 0 {
		fmt.Fprintln(os.Stderr, "dcfsim: nodes file has no data rows")
		return 1
	}

	var agentRows []scenario.AgentRow
	if *agentsFile != "" {
		af, err := os.Open(*agentsFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, "dcfsim:", err)
			return 1
		}
		agentRows, err = scenario.LoadAgents(af)
		af.Close()
		if err != nil {
			fmt.Fprintln(os.Stderr, "dcfsim: agents file:", err)
			return 1
		}
	}

	rng := rand.New(rand.NewSource(seed))

	reg := prometheus.NewRegistry()
	collector := stats.NewCollector(reg)
	if cfg.Metrics.Addr != "" {
		mux := http.NewServeMux()
		mux.Handle(cfg.Metrics.Path, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		srv := &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				consoleLog.Warnf("metrics server: %v", err)
			}
		}()
		defer srv.Close()
		consoleLog.Infof("metrics listening on %s%s", cfg.Metrics.Addr, cfg.Metrics.Path)
	}

	sched := engine.New(engine.BackendCalendar, consoleLog)
	nowFn := sched.Now

	var sysSink *simlog.FileSink
	if writeSystemLogs {
		f, err := os.Create(filepath.Join(cfg.Output.Directory, args.simulationCode+".system.log"))
		if err != nil {
			fmt.Fprintln(os.Stderr, "dcfsim:", err)
			return 1
		}
		defer f.Close()
		sysSink = simlog.NewFileSink(f)
		defer sysSink.Flush()
	}
	systemLog := consoleLog.With("component", "system")
	if sysSink != nil {
		systemLog = systemLog.WithFileSink(sysSink, "system", nowFn)
	}

	b := bus.New()
	topo := node.NewTopology()

	numChannels := 1
	for _, nr := range nodeRows {
		if nr.MaxChAllowed > numChannels {
			numChannels = nr.MaxChAllowed
		}
	}

	wlanIDs := make(map[string]ids.WLANID)
	nextWLAN := ids.WLANID(0)
	wlanIDFor := func(code string) ids.WLANID {
		if id, ok := wlanIDs[code]; ok {
			return id
		}
		id := nextWLAN
		wlanIDs[code] = id
		nextWLAN++
		return id
	}

	type built struct {
		n    *node.Node
		row  scenario.NodeRow
		gen  *node.Generator
	}
	nodes := make([]*built, 0, len(nodeRows))
	nodeIDOf := make(map[string]ids.NodeID)
	apOfWLAN := make(map[ids.WLANID]*node.Node)
	stasOfWLAN := make(map[ids.WLANID][]ids.NodeID)

	for i, nr := range nodeRows {
		nid := ids.NodeID(i)
		nodeIDOf[nr.NodeCode] = nid
		wlan := wlanIDFor(nr.WLANCode)

		ncfg := node.Config{
			ID:   nid,
			Type: node.STA,
			WLAN: wlan,

			X: nr.PositionX, Y: nr.PositionY, Z: nr.PositionZ,

			PrimaryChannel: nr.PrimaryChannel,
			MinCh:          nr.MinChAllowed,
			MaxCh:          nr.MaxChAllowed,
			FreqHz:         nr.CentralFreqGHz * 1e9,

			TXPowerMin: simclock.DBmToPW(nr.TXPowerDefaultDBm),
			TXPowerDefault: simclock.DBmToPW(nr.TXPowerDefaultDBm),
			TXPowerMax: simclock.DBmToPW(nr.TXPowerDefaultDBm),
			PDMin:      simclock.DBmToPW(nr.PDDefaultDBm),
			PDDefault:  simclock.DBmToPW(nr.PDDefaultDBm),
			PDMax:      simclock.DBmToPW(nr.PDDefaultDBm),

			AntennaGainTXDBi: 0,
			AntennaGainRXDBi: 0,

			Bonding: channel.BondingPolicy(nr.ChannelBondingModel),

			PacketLengthBits: uint64(nr.PacketLengthBits),
			MaxAMPDU:         nr.NumPacketsAggregated,

			CaptureEffectThresholdDB: nr.CaptureEffectThrDB,
			ConstantPER:              nr.ConstantPER,

			BSSColor:     nr.BSSColor,
			SRG:          nr.SRG,
			NonSRGOBSSPD: simclock.DBmToPW(nr.NonSRGOBSSPDDBm),
			SRGOBSSPD:    simclock.DBmToPW(nr.SRGOBSSPDDBm),
			SpatialReuse: nr.BSSColor != 0,

			UseRTSCTS:  false,
			CWMin:      nr.CWMin,
			StageMax:   nr.CWStageMax,
			Slotted:    true,
			CWAdapt:    nr.CWAdaptationFlag,
			MaxRetries: cfg.MAC.MaxRetries,

			PathLoss: channel.TGaxIndoorBSS,
		}
		if nr.NodeType == 0 {
			ncfg.Type = node.AP
		}

		nodeLog := consoleLog.With("node", nr.NodeCode)
		if writeNodeLogs {
			f, err := os.Create(filepath.Join(cfg.Output.Directory, nr.NodeCode+".log"))
			if err != nil {
				fmt.Fprintln(os.Stderr, "dcfsim:", err)
				return 1
			}
			defer f.Close()
			sink := simlog.NewFileSink(f)
			defer sink.Flush()
			nodeLog = nodeLog.WithFileSink(sink, nr.NodeCode, nowFn)
		}

		n := node.New(ncfg, sched, b, topo, nodeLog, rand.New(rand.NewSource(rng.Int63())), numChannels)
		b.Register(n)

		model := node.TrafficFullBuffer
		if nr.TrafficModel != 0 {
			model = node.TrafficPoisson
		}
		gen := node.NewGenerator(n, sched, model, nr.TrafficLoad*1e6, rand.New(rand.NewSource(rng.Int63())))

		nodes = append(nodes, &built{n: n, row: nr, gen: gen})
		if ncfg.Type == node.AP {
			apOfWLAN[wlan] = n
		} else {
			stasOfWLAN[wlan] = append(stasOfWLAN[wlan], nid)
		}
	}

	// Wire AP<->STA peer lists per BSS (spec 3.3).
	for _, nb := range nodes {
		wlan := nb.n.Cfg.WLAN
		if nb.n.Cfg.Type == node.AP {
			nb.n.Peers = stasOfWLAN[wlan]
		} else if ap, ok := apOfWLAN[wlan]; ok {
			nb.n.Peers = []ids.NodeID{ap.Cfg.ID}
		}
	}

	agg := stats.NewAggregator(sched, collector, simclock.Clock(time.Second))
	for _, nb := range nodes {
		agg.Register(nb.n.Cfg.WLAN, nb.n)
	}
	agg.Start()
	for _, nb := range nodes {
		nb.gen.Start()
	}

	var controller *agent.Controller
	controllerLog := consoleLog.With("component", "controller")
	for _, ar := range agentRows {
		wlan := wlanIDFor(ar.WLANCode)
		ap, ok := apOfWLAN[wlan]
		if !ok {
			continue
		}
		actions := agent.ActionSpace{
			Channels:     ar.ChannelValues,
			MaxBandwidth: ar.MaxBandwidthValues,
		}
		for _, dbm := range ar.PDValues {
			actions.PD = append(actions.PD, simclock.DBmToPW(dbm))
		}
		for _, dbm := range ar.TXPowerValues {
			actions.TXPower = append(actions.TXPower, simclock.DBmToPW(dbm))
		}
		pp := agent.NewPreProcessor(actions, agent.RewardType(ar.TypeOfReward))

		var learner agent.Learner
		if ar.LearningMechanism == 0 {
			learner = agent.NewEpsilonGreedy(1.0, rand.New(rand.NewSource(rng.Int63())))
		} else {
			learner = agent.NewThompsonSampling(rand.New(rand.NewSource(rng.Int63())))
		}

		period := simclock.Clock(ar.TimeBetweenRequests * float64(time.Second))
		ag := agent.NewAgent(wlan, sched, ap, pp, learner, period, consoleLog.With("agent", ar.WLANCode))
		ag.Start()

		mode := agent.ModePassive
		if ar.CommunicationLevel > 0 {
			mode = agent.ModeActive
		}
		if controller == nil {
			controllerPeriod := simclock.Clock(ar.TimeBetweenRequests * float64(time.Second))
			controller = agent.NewController(sched, mode, agent.Strategy(ar.SelectedStrategy), numChannels, interBSSThresholdDB, controllerPeriod, controllerLog)
		}
		controller.Register(ag)
	}
	if controller != nil {
		controller.Start()
	}

	clearAt := simclock.Clock(0)
	stop := simclock.Clock(simTime * float64(time.Second))

	start := time.Now()
	summary, err := sched.Run(stop, &clearAt)
	wall := time.Since(start)
	if err != nil {
		fmt.Fprintln(os.Stderr, "dcfsim: simulation error:", err)
		return 1
	}

	rate := float64(summary.EventsProcessed) / wall.Seconds()
	systemLog.Logf("done: events=%d wall=%s rate=%.0f/s", summary.EventsProcessed, wall, rate)

	if err := writeScriptOutput(args.scriptOutputFile, args.simulationCode, summary, wall, &agg.System); err != nil {
		fmt.Fprintln(os.Stderr, "dcfsim: writing script output:", err)
		return 1
	}

	return 0
}

// writeScriptOutput appends a run's summary statistics to path in the
// "LOG_LVL1/LOG_LVL2"-style multi-line form komondor_rts_cts.cc's
// script_output_file writes, so a batch of runs driven by an external
// script can be scraped from one accumulating file (spec 6.2).
func writeScriptOutput(path string, code string, summary engine.Summary, wall time.Duration, sys *report.Performance) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	fmt.Fprintf(f, "------------------------------------\n")
	fmt.Fprintf(f, "KOMONDOR SIMULATION '%s'\n", code)
	fmt.Fprintf(f, "  STATISTICS:\n")
	fmt.Fprintf(f, "    Events processed = %d\n", summary.EventsProcessed)
	fmt.Fprintf(f, "    Wall time = %s\n", wall)
	fmt.Fprintf(f, "    Total packets sent = %d\n", sys.DataSent)
	fmt.Fprintf(f, "    Total packets acked = %d\n", sys.DataAcked)
	fmt.Fprintf(f, "    Total packets lost = %d\n", sys.DataLost)
	fmt.Fprintf(f, "    Throughput = %.2f Mbps\n", float64(sys.Throughput)/1e6)
	fmt.Fprintf(f, "    Average delay = %s\n", sys.AverageDelay())
	for sta, perf := range sys.PerSTA {
		fmt.Fprintf(f, "    Node #%d Throughput = %.2f Mbps\n", sta, float64(perf.Throughput)/1e6)
	}
	return nil
}
