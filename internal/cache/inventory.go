package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	ProviderKeyPrefix   = "provider:%s"
	SessionKeyPrefix    = "session:%s"
	ListingFrontPage    = "providers:front"
	MagicLinkUsedPrefix = "magic_used:%s"
)

const (
	ProviderTTL  = 10 * time.Minute
	SessionTTL   = 5 * time.Minute
	ListingTTL   = 2 * time.Minute
	MagicUsedTTL = 30 * time.Minute
)

func ProviderKey(slug string) string {
	return fmt.Sprintf(ProviderKeyPrefix, slug)
}

func SessionKey(token string) string {
	return fmt.Sprintf(SessionKeyPrefix, token)
}

func MagicLinkUsedKey(jti string) string {
	return fmt.Sprintf(MagicLinkUsedPrefix, jti)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateProvider(ctx context.Context, slug string) {
	Invalidate(ctx, ProviderKey(slug))
	Invalidate(ctx, ListingFrontPage)
}

func InvalidateSession(ctx context.Context, token string) {
	Invalidate(ctx, SessionKey(token))
}

func InvalidateListing(ctx context.Context) {
	Invalidate(ctx, ListingFrontPage)
}
