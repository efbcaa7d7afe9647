package descriptor

import (
	"testing"
	"time"
)

func TestDirectoryPropertiesUndefined(t *testing.T) {
	d := NewDirectory("/tmp/foo", time.Now())
	if _, ok := d.Property(FILE_SIZE); ok {
		t.Fatal("expected FILE_SIZE undefined for directory")
	}
	if _, ok := d.Property(IMAGE_WIDTH); ok {
		t.Fatal("expected IMAGE_WIDTH undefined for directory")
	}
	if name, ok := d.Property(FILE_NAME); !ok || name != "foo" {
		t.Fatalf("expected FILE_NAME=foo, got %v ok=%v", name, ok)
	}
}

func TestFormatFromExtensionNormalisesJPG(t *testing.T) {
	if got := FormatFromExtension("jpg"); got != RASTER_JPEG {
		t.Fatalf("expected jpg to normalise to RASTER_JPEG, got %v", got)
	}
	if got := FormatFromExtension(".JPEG"); got != RASTER_JPEG {
		t.Fatalf("expected case-insensitive JPEG, got %v", got)
	}
}

func TestImageSizeUnknown(t *testing.T) {
	if !Unknown.IsUnknown() {
		t.Fatal("Unknown sentinel should report IsUnknown")
	}
	if (ImageSize{Width: 10, Height: 10}).IsUnknown() {
		t.Fatal("valid size should not report IsUnknown")
	}
}
