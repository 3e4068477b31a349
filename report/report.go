/*
Package report hands a finished snapshot off to the outside world. The
primary path is Skogul: the snapshot is rendered into a container with
one metric per device plus a fleet-level metric, and pushed through a
handler from a regular skogul config. The secondary path publishes the
JSON snapshot to an AMQP queue for anything downstream that wants the
raw thing.

The report layer never mutates the snapshot, and its failures never
change the outcome of the pass; they are the caller's problem to log.
*/
package report

import (
	"fmt"

	"github.com/telenornms/skogul"
	sconfig "github.com/telenornms/skogul/config"

	"github.com/telenornms/skuld/inventory"
)

// Sender pushes snapshots through a skogul handler called "skuld".
type Sender struct {
	Skogul *sconfig.Config
}

// NewSender loads a skogul config and verifies the skuld handler exists.
func NewSender(path string) (*Sender, error) {
	cfg, err := sconfig.Path(path)
	if err != nil {
		return nil, fmt.Errorf("skogul-config failed loading: %w", err)
	}
	if cfg.Handlers["skuld"] == nil {
		return nil, fmt.Errorf("missing skuld handler in skogul config")
	}
	return &Sender{Skogul: cfg}, nil
}

func (s *Sender) Send(snap *inventory.Snapshot) error {
	c := Render(snap)
	if err := s.Skogul.Handlers["skuld"].Handler.TransformAndSend(c); err != nil {
		return fmt.Errorf("send failed: %w", err)
	}
	return nil
}

// Render builds the skogul container: per-device metrics carry the audit
// summary, the fleet metric carries the four aggregated tables.
func Render(snap *inventory.Snapshot) *skogul.Container {
	c := &skogul.Container{}
	for i := range snap.Summary {
		row := snap.Summary[i]
		m := skogul.Metric{}
		t := snap.Finished
		m.Time = &t
		m.Metadata = map[string]interface{}{
			"target": row.Device,
			"pass":   snap.ID,
		}
		m.Data = map[string]interface{}{
			"status":       row.Status.String(),
			"commands_ok":  row.OK,
			"commands_err": row.Failed + row.Skipped,
			"elapsed_ms":   row.Elapsed.Milliseconds(),
		}
		if row.Err != "" {
			m.Data["error"] = row.Err
			m.Data["last_command"] = row.LastCommand
		}
		c.Metrics = append(c.Metrics, &m)
	}

	fleet := skogul.Metric{}
	t := snap.Finished
	fleet.Time = &t
	fleet.Metadata = map[string]interface{}{
		"pass": snap.ID,
	}
	fleet.Data = map[string]interface{}{
		"devices":     len(snap.Summary),
		"hardware":    snap.Hardware,
		"utilization": snap.Utilization,
		"ports":       snap.Ports,
		"alarms":      snap.Alarms,
	}
	c.Metrics = append(c.Metrics, &fleet)
	return c
}
