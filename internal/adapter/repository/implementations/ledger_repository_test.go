package implementations

import (
	"testing"

	"github.com/api-sage/wallet-ledger/internal/domain"
)

func TestOrderWalletIDs(t *testing.T) {
	first, second := orderWalletIDs(
		"22222222-2222-2222-2222-222222222222",
		"11111111-1111-1111-1111-111111111111",
	)
	if first != "11111111-1111-1111-1111-111111111111" {
		t.Fatalf("expected lower id first, got %s", first)
	}
	if second != "22222222-2222-2222-2222-222222222222" {
		t.Fatalf("expected higher id second, got %s", second)
	}

	first, second = orderWalletIDs(
		"11111111-1111-1111-1111-111111111111",
		"22222222-2222-2222-2222-222222222222",
	)
	if first != "11111111-1111-1111-1111-111111111111" || second != "22222222-2222-2222-2222-222222222222" {
		t.Fatal("expected already-ordered ids to be preserved")
	}
}

func TestDecodeMetadata(t *testing.T) {
	if decodeMetadata(nil, "DEP_abc") != nil {
		t.Fatal("expected nil metadata for empty payload")
	}
	if decodeMetadata([]byte(`{"channel":`), "DEP_abc") != nil {
		t.Fatal("expected nil metadata for malformed payload")
	}

	metadata := decodeMetadata([]byte(`{"channel": "paystack"}`), "DEP_abc")
	if metadata[domain.MetadataKeyChannel] != "paystack" {
		t.Fatalf("expected channel preserved, got %+v", metadata)
	}
}

func TestMarshalMetadata(t *testing.T) {
	value, err := marshalMetadata(nil)
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if value != nil {
		t.Fatal("expected nil value for empty metadata so the column stays NULL")
	}

	value, err = marshalMetadata(domain.Metadata{domain.MetadataKeyChannel: "paystack"})
	if err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	raw, ok := value.([]byte)
	if !ok || len(raw) == 0 {
		t.Fatalf("expected encoded payload, got %#v", value)
	}
}
