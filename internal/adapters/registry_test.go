package adapters

import (
	"testing"

	"crosspost/internal/adapters/memory"
	"crosspost/internal/core/adapter"
	"crosspost/internal/platform/config"
	perr "crosspost/internal/platform/errors"
	kit "crosspost/internal/platform/testkit"
)

func TestFromConfig(t *testing.T) {
	t.Setenv("T_ADAPTERS_IDS", "mastodon, tg-main")
	t.Setenv("T_ADAPTERS_MASTODON_CAPS", "edit,delete,reply,teleport")
	t.Setenv("T_ADAPTERS_MASTODON_MAX_LENGTH", "500")
	t.Setenv("T_ADAPTERS_MASTODON_BASE_URL", "https://mastodon.example/@me")
	t.Setenv("T_ADAPTERS_TG_MAIN_NETWORK", "telegram")

	reg, err := FromConfig(config.New().Prefix("T_ADAPTERS_"))
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	if ids := reg.IDs(); len(ids) != 2 || ids[0] != "mastodon" || ids[1] != "tg-main" {
		t.Fatalf("IDs = %v", ids)
	}

	m, _ := reg.Lookup("mastodon")
	if !m.Can(adapter.CapEdit) || !m.Can(adapter.CapReply) || m.Can(adapter.CapThreads) {
		t.Fatalf("caps = %v", m.Capabilities().List())
	}
	if m.Limits().MaxLength != 500 {
		t.Fatalf("limits = %+v", m.Limits())
	}

	tg, _ := reg.Lookup("tg-main")
	if tg.(*memory.Adapter).Network() != "telegram" || len(tg.Capabilities()) != 0 {
		t.Fatalf("tg adapter misconfigured")
	}
}

func TestFromConfig_Empty(t *testing.T) {
	reg, err := FromConfig(config.New().Prefix("NONE_ADAPTERS_"))
	if err != nil || len(reg) != 0 {
		t.Fatalf("empty config should give empty registry, got %v %v", reg, err)
	}
}

func TestFromConfig_Duplicate(t *testing.T) {
	t.Setenv("D_ADAPTERS_IDS", "a,a")
	_, err := FromConfig(config.New().Prefix("D_ADAPTERS_"))
	kit.MustCode(t, err, perr.ErrorCodeInvalidArgument)
}

func TestFromConfig_Kind(t *testing.T) {
	t.Setenv("K_ADAPTERS_IDS", "a,b")
	t.Setenv("K_ADAPTERS_A_KIND", "Memory")
	reg, err := FromConfig(config.New().Prefix("K_ADAPTERS_"))
	if err != nil || len(reg) != 2 {
		t.Fatalf("kind is case insensitive and defaults to memory: %v %v", reg, err)
	}
	if _, ok := reg["a"].(*memory.Adapter); !ok {
		t.Fatalf("a = %T", reg["a"])
	}

	t.Setenv("K_ADAPTERS_B_KIND", "bluesky")
	kit.MustPanic(t, func() { _, _ = FromConfig(config.New().Prefix("K_ADAPTERS_")) })
}
