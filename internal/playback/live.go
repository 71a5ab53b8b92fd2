package playback

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/llehouerou/lumen/internal/errmsg"
	"github.com/llehouerou/lumen/internal/media"
)

// markChannel records that a live channel is being tuned.
func (c *Controller) markChannel(item *media.Item) {
	now := c.now()
	if cur := c.queue.Current(); cur != nil && cur.ID == item.ID {
		cur.LastPlayed = now
	}
	if c.channels != nil {
		c.channels.MarkPlayed(item.ID, now)
	}
	if c.sessions != nil {
		if err := c.sessions.SaveLastChannel(item.ID); err != nil {
			c.logger.WithError(err).Warn(errmsg.Format(errmsg.OpChannelSave, err))
		}
	}
	c.setProgram(item.CurrentProgram)
}

// refreshProgram fetches the program now airing on the channel.
func (c *Controller) refreshProgram(id uuid.UUID) {
	if c.channels == nil {
		return
	}
	goAsync(c, id,
		func(ctx context.Context) (*media.Item, error) {
			return c.channels.Channel(ctx, id)
		},
		func(ch *media.Item, err error) {
			if err != nil {
				c.logger.WithError(err).WithField("channel", id).Warn("refresh program info")
				return
			}
			if ch == nil || ch.CurrentProgram == nil {
				return
			}
			program := *ch.CurrentProgram
			if cur := c.queue.Current(); cur != nil {
				cur.CurrentProgram = &program
			}
			c.setProgram(&program)
		})
}

func (c *Controller) setProgram(p *media.Program) {
	if p == nil {
		c.pos.programStart, c.pos.programEnd = time.Time{}, time.Time{}
		return
	}
	c.pos.programStart, c.pos.programEnd = p.Start, p.End
}
