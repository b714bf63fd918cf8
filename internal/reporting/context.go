package reporting

import (
	"context"
	"maps"
	"strconv"
	"time"
)

type reportingMetaContextKey struct{}

// ReportingMeta is attached to every event reported from a context
type ReportingMeta struct {
	tags      map[string]string
	extras    map[string]string
	username  string
	gameID    uint32
	hardcore  bool
	startedAt time.Time
}

func MetaFromContext(ctx context.Context) ReportingMeta {
	meta, ok := ctx.Value(reportingMetaContextKey{}).(ReportingMeta)
	if !ok {
		return ReportingMeta{
			tags:   make(map[string]string),
			extras: make(map[string]string),
		}
	}
	meta.tags = maps.Clone(meta.tags)
	meta.extras = maps.Clone(meta.extras)
	return meta
}

func updateMeta(ctx context.Context, update func(meta *ReportingMeta)) context.Context {
	meta := MetaFromContext(ctx)
	update(&meta)
	return context.WithValue(ctx, reportingMetaContextKey{}, meta)
}

func setStartedAtInContext(ctx context.Context, startedAt time.Time) context.Context {
	return updateMeta(ctx, func(meta *ReportingMeta) {
		meta.startedAt = startedAt
	})
}

func AddExtrasToContext(ctx context.Context, extras map[string]string) context.Context {
	return updateMeta(ctx, func(meta *ReportingMeta) {
		maps.Copy(meta.extras, extras)
	})
}

func AddTagsToContext(ctx context.Context, tags map[string]string) context.Context {
	return updateMeta(ctx, func(meta *ReportingMeta) {
		maps.Copy(meta.tags, tags)
	})
}

func SetUsernameInContext(ctx context.Context, username string) context.Context {
	return updateMeta(ctx, func(meta *ReportingMeta) {
		meta.username = username
	})
}

// SetGameInContext tags reports with the loaded game and mode
func SetGameInContext(ctx context.Context, gameID uint32, hardcore bool) context.Context {
	return updateMeta(ctx, func(meta *ReportingMeta) {
		meta.gameID = gameID
		meta.hardcore = hardcore
	})
}

func (m ReportingMeta) gameTags() map[string]string {
	if m.gameID == 0 {
		return nil
	}
	return map[string]string{
		"gameId":   strconv.FormatUint(uint64(m.gameID), 10),
		"hardcore": strconv.FormatBool(m.hardcore),
	}
}
