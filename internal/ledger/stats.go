package ledger

import (
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Stats folds one day's records into counts and USD volume.
func (l *Ledger) Stats(date string) (DailyStats, error) {
	records, err := l.Read(date)
	if err != nil {
		return DailyStats{}, err
	}

	stats := newDailyStats(date)
	for _, record := range records {
		stats.fold(l.agent, record)
	}
	return stats, nil
}

// CollectStats folds one day's records across several agents into a single
// report. Agents with no file for the date contribute zero rows.
func CollectStats(baseDir string, agents []string, date string, logger zerolog.Logger) (DailyStats, error) {
	stats := newDailyStats(date)

	for _, agent := range agents {
		l := Open(baseDir, agent, logger)
		records, err := l.Read(date)
		if err != nil {
			return DailyStats{}, err
		}
		stats.Agents[agent] = AgentStats{VolumeUSD: decimal.Zero}
		for _, record := range records {
			stats.fold(agent, record)
		}
	}

	return stats, nil
}

func newDailyStats(date string) DailyStats {
	return DailyStats{
		Date:           date,
		TotalVolumeUSD: decimal.Zero,
		Agents:         make(map[string]AgentStats),
	}
}

func (s *DailyStats) fold(agent string, record Record) {
	agentStats, ok := s.Agents[agent]
	if !ok {
		agentStats = AgentStats{VolumeUSD: decimal.Zero}
	}

	s.TotalTx++
	agentStats.Count++

	switch record.Status {
	case StatusSuccess:
		s.SuccessTx++
		agentStats.Success++
	case StatusFailed:
		s.FailedTx++
		agentStats.Failed++
	case StatusPending, StatusRequiresApproval:
		s.PendingTx++
		agentStats.Pending++
	default:
		// Counted in the total but not classified.
		s.UnknownTx++
	}

	s.TotalVolumeUSD = s.TotalVolumeUSD.Add(record.USDValue)
	agentStats.VolumeUSD = agentStats.VolumeUSD.Add(record.USDValue)

	s.Agents[agent] = agentStats
}
