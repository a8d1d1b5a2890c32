// SPDX-License-Identifier: GPL-3.0

// Package scenario defines the row schemas for dcfsim's per-run input
// files (spec §6.1's system and node CSVs) and a minimal encoding/csv-based
// loader, grounded on
// original_source/Code/list_of_macros.h's IX_* column-index contract.
package scenario

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// SystemRow is one parsed row of the system-level input CSV (the IX_SYSTEM_*
// column family: simulation code, I/O filenames, logging flags, simulation
// time, random seed).
type SystemRow struct {
	SystemInputFile    string
	NodesInputFile     string
	ScriptOutputFile   string
	SimulationCode     string
	WriteSystemLogs    bool
	WriteNodeLogs      bool
	PrintSystemLogs    bool
	PrintNodeLogs      bool
	SimulationTime     float64
	RandomSeed         int64
}

// NodeRow is one parsed row of the per-node input CSV (the IX_NODE_*
// column family: identity, position, PHY/MAC parameters, traffic model,
// spatial-reuse knobs).
type NodeRow struct {
	NodeCode              string
	NodeType              int
	WLANCode              string
	PositionX, PositionY, PositionZ float64
	CentralFreqGHz        float64
	ChannelBondingModel   int
	PrimaryChannel        int
	MinChAllowed          int
	MaxChAllowed          int
	TXPowerDefaultDBm     float64
	PDDefaultDBm          float64
	TrafficModel          int
	TrafficLoad           float64
	PacketLengthBits      int
	NumPacketsAggregated  int
	CaptureEffectModel    int
	CaptureEffectThrDB    float64
	ConstantPER           float64
	PIFSActivated         bool
	CWAdaptationFlag      bool
	CWMin                 int
	CWStageMax            int
	BSSColor              int
	SRG                   int
	NonSRGOBSSPDDBm       float64
	SRGOBSSPDDBm          float64
}

// AgentRow is one parsed row of the per-agent input CSV (the IX_AGENT_*
// column family: which WLAN it controls, its communication level, request
// period, and the per-parameter action lists a PreProcessor flattens into
// an ActionSpace).
type AgentRow struct {
	WLANCode           string
	CommunicationLevel int
	TimeBetweenRequests float64
	ChannelValues      []int
	PDValues           []float64
	TXPowerValues      []float64
	MaxBandwidthValues []int
	TypeOfReward       int
	LearningMechanism  int
	SelectedStrategy   int
}

var agentColumns = []string{
	"wlan_code", "communication_level", "time_bw_requests",
	"channel_values", "pd_values", "tx_power_values", "max_bandwidth",
	"type_of_reward", "learning_mechanism", "selected_strategy",
}

// LoadAgents parses a headered per-agent CSV into AgentRows. The four
// list-valued columns (channel/pd/tx-power/max-bandwidth values) are
// semicolon-separated within their cell, matching the original's
// space-separated list convention adapted to one CSV field per column.
func LoadAgents(r io.Reader) ([]AgentRow, error) {
	rows, err := readCSV(r, len(agentColumns))
	if err != nil {
		return nil, err
	}
	out := make([]AgentRow, 0, len(rows))
	for i, row := range rows {
		ar, err := parseAgentRow(row)
		if err != nil {
			return nil, fmt.Errorf("agent row %d: %w", i, err)
		}
		out = append(out, ar)
	}
	return out, nil
}

func parseAgentRow(row []string) (AgentRow, error) {
	var ar AgentRow
	var err error
	ar.WLANCode = row[0]
	if ar.CommunicationLevel, err = strconv.Atoi(row[1]); err != nil {
		return ar, fmt.Errorf("communication_level: %w", err)
	}
	if ar.TimeBetweenRequests, err = strconv.ParseFloat(row[2], 64); err != nil {
		return ar, fmt.Errorf("time_bw_requests: %w", err)
	}
	if ar.ChannelValues, err = parseIntList(row[3]); err != nil {
		return ar, fmt.Errorf("channel_values: %w", err)
	}
	if ar.PDValues, err = parseFloatList(row[4]); err != nil {
		return ar, fmt.Errorf("pd_values: %w", err)
	}
	if ar.TXPowerValues, err = parseFloatList(row[5]); err != nil {
		return ar, fmt.Errorf("tx_power_values: %w", err)
	}
	if ar.MaxBandwidthValues, err = parseIntList(row[6]); err != nil {
		return ar, fmt.Errorf("max_bandwidth: %w", err)
	}
	if ar.TypeOfReward, err = strconv.Atoi(row[7]); err != nil {
		return ar, fmt.Errorf("type_of_reward: %w", err)
	}
	if ar.LearningMechanism, err = strconv.Atoi(row[8]); err != nil {
		return ar, fmt.Errorf("learning_mechanism: %w", err)
	}
	if ar.SelectedStrategy, err = strconv.Atoi(row[9]); err != nil {
		return ar, fmt.Errorf("selected_strategy: %w", err)
	}
	return ar, nil
}

func parseIntList(s string) ([]int, error) {
	parts := splitNonEmpty(s)
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func parseFloatList(s string) ([]float64, error) {
	parts := splitNonEmpty(s)
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ";") {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// systemColumns is the header order spec §6.1 fixes for the system CSV
// (IX_SYSTEM_INPUT_FILE=1 .. IX_RANDOM_SEED=10, 1-indexed in the original;
// this slice is 0-indexed).
var systemColumns = []string{
	"system_input_file", "nodes_input_file", "script_output_filename",
	"simulation_code", "write_system_logs", "write_node_logs",
	"print_system_logs", "print_node_logs", "simulation_time", "random_seed",
}

// nodeColumns is the header order spec §6.1 fixes for the per-node CSV
// (IX_NODE_CODE=1 .. IX_SRG_OBSS_PD=28).
var nodeColumns = []string{
	"node_code", "node_type", "wlan_code", "position_x", "position_y",
	"position_z", "central_freq", "channel_bonding_model", "primary_channel",
	"min_ch_allowed", "max_ch_allowed", "tx_power_default", "pd_default",
	"traffic_model", "traffic_load", "packet_length", "num_packets_agg",
	"capture_effect_model", "capture_effect_thr", "constant_per",
	"pifs_activated", "cw_adaptation_flag", "cw_min", "cw_stage_max",
	"bss_color", "srg", "non_srg_obss_pd", "srg_obss_pd",
}

// LoadSystem parses a headered system CSV into SystemRows, one per
// non-header row.
func LoadSystem(r io.Reader) ([]SystemRow, error) {
	rows, err := readCSV(r, len(systemColumns))
	if err != nil {
		return nil, err
	}
	out := make([]SystemRow, 0, len(rows))
	for i, row := range rows {
		simTime, err := strconv.ParseFloat(row[8], 64)
		if err != nil {
			return nil, fmt.Errorf("system row %d: simulation_time: %w", i, err)
		}
		seed, err := strconv.ParseInt(row[9], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("system row %d: random_seed: %w", i, err)
		}
		out = append(out, SystemRow{
			SystemInputFile:  row[0],
			NodesInputFile:   row[1],
			ScriptOutputFile: row[2],
			SimulationCode:   row[3],
			WriteSystemLogs:  parseBool(row[4]),
			WriteNodeLogs:    parseBool(row[5]),
			PrintSystemLogs:  parseBool(row[6]),
			PrintNodeLogs:    parseBool(row[7]),
			SimulationTime:   simTime,
			RandomSeed:       seed,
		})
	}
	return out, nil
}

// LoadNodes parses a headered per-node CSV into NodeRows, one per
// non-header row.
func LoadNodes(r io.Reader) ([]NodeRow, error) {
	rows, err := readCSV(r, len(nodeColumns))
	if err != nil {
		return nil, err
	}
	out := make([]NodeRow, 0, len(rows))
	for i, row := range rows {
		nr, err := parseNodeRow(row)
		if err != nil {
			return nil, fmt.Errorf("node row %d: %w", i, err)
		}
		out = append(out, nr)
	}
	return out, nil
}

func parseNodeRow(row []string) (NodeRow, error) {
	var nr NodeRow
	var err error
	nr.NodeCode = row[0]
	if nr.NodeType, err = strconv.Atoi(row[1]); err != nil {
		return nr, fmt.Errorf("node_type: %w", err)
	}
	nr.WLANCode = row[2]
	if nr.PositionX, err = strconv.ParseFloat(row[3], 64); err != nil {
		return nr, fmt.Errorf("position_x: %w", err)
	}
	if nr.PositionY, err = strconv.ParseFloat(row[4], 64); err != nil {
		return nr, fmt.Errorf("position_y: %w", err)
	}
	if nr.PositionZ, err = strconv.ParseFloat(row[5], 64); err != nil {
		return nr, fmt.Errorf("position_z: %w", err)
	}
	if nr.CentralFreqGHz, err = strconv.ParseFloat(row[6], 64); err != nil {
		return nr, fmt.Errorf("central_freq: %w", err)
	}
	if nr.ChannelBondingModel, err = strconv.Atoi(row[7]); err != nil {
		return nr, fmt.Errorf("channel_bonding_model: %w", err)
	}
	if nr.PrimaryChannel, err = strconv.Atoi(row[8]); err != nil {
		return nr, fmt.Errorf("primary_channel: %w", err)
	}
	if nr.MinChAllowed, err = strconv.Atoi(row[9]); err != nil {
		return nr, fmt.Errorf("min_ch_allowed: %w", err)
	}
	if nr.MaxChAllowed, err = strconv.Atoi(row[10]); err != nil {
		return nr, fmt.Errorf("max_ch_allowed: %w", err)
	}
	if nr.TXPowerDefaultDBm, err = strconv.ParseFloat(row[11], 64); err != nil {
		return nr, fmt.Errorf("tx_power_default: %w", err)
	}
	if nr.PDDefaultDBm, err = strconv.ParseFloat(row[12], 64); err != nil {
		return nr, fmt.Errorf("pd_default: %w", err)
	}
	if nr.TrafficModel, err = strconv.Atoi(row[13]); err != nil {
		return nr, fmt.Errorf("traffic_model: %w", err)
	}
	if nr.TrafficLoad, err = strconv.ParseFloat(row[14], 64); err != nil {
		return nr, fmt.Errorf("traffic_load: %w", err)
	}
	if nr.PacketLengthBits, err = strconv.Atoi(row[15]); err != nil {
		return nr, fmt.Errorf("packet_length: %w", err)
	}
	if nr.NumPacketsAggregated, err = strconv.Atoi(row[16]); err != nil {
		return nr, fmt.Errorf("num_packets_agg: %w", err)
	}
	if nr.CaptureEffectModel, err = strconv.Atoi(row[17]); err != nil {
		return nr, fmt.Errorf("capture_effect_model: %w", err)
	}
	if nr.CaptureEffectThrDB, err = strconv.ParseFloat(row[18], 64); err != nil {
		return nr, fmt.Errorf("capture_effect_thr: %w", err)
	}
	if nr.ConstantPER, err = strconv.ParseFloat(row[19], 64); err != nil {
		return nr, fmt.Errorf("constant_per: %w", err)
	}
	nr.PIFSActivated = parseBool(row[20])
	nr.CWAdaptationFlag = parseBool(row[21])
	if nr.CWMin, err = strconv.Atoi(row[22]); err != nil {
		return nr, fmt.Errorf("cw_min: %w", err)
	}
	if nr.CWStageMax, err = strconv.Atoi(row[23]); err != nil {
		return nr, fmt.Errorf("cw_stage_max: %w", err)
	}
	if nr.BSSColor, err = strconv.Atoi(row[24]); err != nil {
		return nr, fmt.Errorf("bss_color: %w", err)
	}
	if nr.SRG, err = strconv.Atoi(row[25]); err != nil {
		return nr, fmt.Errorf("srg: %w", err)
	}
	if nr.NonSRGOBSSPDDBm, err = strconv.ParseFloat(row[26], 64); err != nil {
		return nr, fmt.Errorf("non_srg_obss_pd: %w", err)
	}
	if nr.SRGOBSSPDDBm, err = strconv.ParseFloat(row[27], 64); err != nil {
		return nr, fmt.Errorf("srg_obss_pd: %w", err)
	}
	return nr, nil
}

func parseBool(s string) bool {
	return s == "1" || s == "true" || s == "TRUE"
}

// readCSV reads a headered CSV, skipping comment lines starting with '#'
// (matching configuration_parser.h's key-value comment convention), and
// validates every data row has exactly wantFields columns.
func readCSV(r io.Reader, wantFields int) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.Comment = '#'
	cr.TrimLeadingSpace = true
	all, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(all) == 0 {
		return nil, nil
	}
	data := all[1:] // first row is the header
	for i, row := range data {
		if len(row) != wantFields {
			return nil, fmt.Errorf("row %d: expected %d fields, got %d", i, wantFields, len(row))
		}
	}
	return data, nil
}
