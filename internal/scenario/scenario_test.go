package scenario_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wnsim/dcfsim/internal/scenario"
)

func TestLoadSystemParsesRow(t *testing.T) {
	csv := "" +
		"system_input_file,nodes_input_file,script_output_filename,simulation_code,write_system_logs,write_node_logs,print_system_logs,print_node_logs,simulation_time,random_seed\n" +
		"# a comment line, skipped\n" +
		"system.csv,nodes.csv,out.txt,run01,1,0,0,1,10.5,1234\n"

	rows, err := scenario.LoadSystem(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	r := rows[0]
	assert.Equal(t, "run01", r.SimulationCode)
	assert.True(t, r.WriteSystemLogs)
	assert.False(t, r.WriteNodeLogs)
	assert.True(t, r.PrintNodeLogs)
	assert.InDelta(t, 10.5, r.SimulationTime, 1e-9)
	assert.Equal(t, int64(1234), r.RandomSeed)
}

func TestLoadNodesRejectsWrongColumnCount(t *testing.T) {
	csv := "node_code,node_type\nSTA1,1\n"
	_, err := scenario.LoadNodes(strings.NewReader(csv))
	assert.Error(t, err)
}

func TestLoadAgentsParsesListColumns(t *testing.T) {
	header := "wlan_code,communication_level,time_bw_requests,channel_values,pd_values,tx_power_values,max_bandwidth,type_of_reward,learning_mechanism,selected_strategy\n"
	row := "wlan_A,1,2.0,1;2;3;4,-82;-72,15;20;23,1;2;4;8,0,0,0\n"
	rows, err := scenario.LoadAgents(strings.NewReader(header + row))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	ar := rows[0]
	assert.Equal(t, []int{1, 2, 3, 4}, ar.ChannelValues)
	assert.Equal(t, []float64{-82, -72}, ar.PDValues)
	assert.Equal(t, []float64{15, 20, 23}, ar.TXPowerValues)
	assert.Equal(t, []int{1, 2, 4, 8}, ar.MaxBandwidthValues)
}

func TestLoadSystemEmptyInputNoRows(t *testing.T) {
	rows, err := scenario.LoadSystem(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
}
