package extractor

import (
	"errors"
	"testing"
)

// fixturePage approximates a rendered onehousing.vn detail page with
// the elements the selectors target.
const fixturePage = `<!DOCTYPE html>
<html>
<head>
	<link rel="preload" as="image" imagesrcset="https://cdn.onehousing.vn/img/abc-640.webp 640w, https://cdn.onehousing.vn/img/abc-1080.webp 1080w">
	<script type="application/ld+json">{"@type":"Organization","name":"OneHousing"}</script>
	<script type="application/ld+json">
	{
		"@type": "BreadcrumbList",
		"itemListElement": [
			{"position": 1, "name": "Mua bán nhà đất"},
			{"position": 2, "name": "Hà Nội"},
			{"position": 3, "name": "Quận Đống Đa"},
			{"position": 4, "name": "Bán nhà riêng phố Thái Hà"}
		]
	}
	</script>
</head>
<body>
	<h1 id="detail_title"> Bán nhà riêng phố Thái Hà, 40m², 4 tầng </h1>
	<span id="total-price">5,2 tỷ</span>
	<span id="unit-price">130 triệu/m²</span>
	<div id="container-property">
		<div>1</div><div>2</div><div>3</div><div>4</div>
		<div>
			<div class="flex cursor-pointer"><p>OH-123456</p></div>
		</div>
	</div>
	<div id="overview_content">
		<div data-impression-index="0">Mặt tiền 4 m</div>
		<div data-impression-index="1">Ngõ rộng 3 m</div>
	</div>
	<div id="key-feature-item">
		<span id="item_title">Diện tích</span>
		<span id="key-feature-text">40 m²</span>
	</div>
	<div id="key-feature-item">
		<span id="item_title">Số tầng</span>
		<span id="key-feature-text">4</span>
	</div>
	<div id="key-feature-item">
		<span id="item_title">Hướng nhà</span>
	</div>
	<div data-testid="property-description">Nhà đẹp, ngõ thông, gần phố.</div>
</body>
</html>`

func TestParseListing(t *testing.T) {
	t.Parallel()

	rec, err := parseListing("https://onehousing.vn/ban-nha/thai-ha", fixturePage)
	if err != nil {
		t.Fatalf("failed to parse fixture: %v", err)
	}

	if rec.Title != "Bán nhà riêng phố Thái Hà, 40m², 4 tầng" {
		t.Errorf("unexpected title: %q", rec.Title)
	}
	if rec.PropertyID != "OH-123456" {
		t.Errorf("unexpected property id: %q", rec.PropertyID)
	}
	if rec.TotalPrice != "5,2 tỷ" {
		t.Errorf("unexpected total price: %q", rec.TotalPrice)
	}
	if rec.UnitPrice != "130 triệu/m²" {
		t.Errorf("unexpected unit price: %q", rec.UnitPrice)
	}
	if rec.URL != "https://onehousing.vn/ban-nha/thai-ha" {
		t.Errorf("unexpected URL: %q", rec.URL)
	}
	if rec.AlleyWidth != "Ngõ rộng 3 m" {
		t.Errorf("unexpected alley width: %q", rec.AlleyWidth)
	}
	if rec.ImageURL != "https://cdn.onehousing.vn/img/abc-640.webp" {
		t.Errorf("unexpected image URL: %q", rec.ImageURL)
	}
	if rec.City != "Hà Nội" {
		t.Errorf("unexpected city: %q", rec.City)
	}
	if rec.District != "Quận Đống Đa" {
		t.Errorf("unexpected district: %q", rec.District)
	}

	wantFeatures := []string{"Diện tích: 40 m²", "Số tầng: 4"}
	if len(rec.Features) != len(wantFeatures) {
		t.Fatalf("expected %d features, got %v", len(wantFeatures), rec.Features)
	}
	for i, f := range wantFeatures {
		if rec.Features[i] != f {
			t.Errorf("features[%d] = %q, want %q", i, rec.Features[i], f)
		}
	}

	if rec.Description != "Nhà đẹp, ngõ thông, gần phố." {
		t.Errorf("unexpected description: %q", rec.Description)
	}
}

func TestParseListing_DescriptionFallback(t *testing.T) {
	t.Parallel()

	page := `<html><body>
		<h1 id="detail_title">Bán căn hộ</h1>
		<ul aria-label="description-heading" class="relative">
			<li>Tầng trung</li>
			<li></li>
			<li>View hồ</li>
		</ul>
	</body></html>`

	rec, err := parseListing("https://onehousing.vn/ban-can-ho/x", page)
	if err != nil {
		t.Fatalf("failed to parse page: %v", err)
	}
	if rec.Description != "Tầng trung. View hồ" {
		t.Errorf("unexpected joined description: %q", rec.Description)
	}
}

func TestParseListing_MissingFieldsAreNotErrors(t *testing.T) {
	t.Parallel()

	page := `<html><body><h1 id="detail_title">Bán đất nền</h1></body></html>`

	rec, err := parseListing("https://onehousing.vn/ban-dat/x", page)
	if err != nil {
		t.Fatalf("a sparse page should still parse: %v", err)
	}
	if rec.Title != "Bán đất nền" {
		t.Errorf("unexpected title: %q", rec.Title)
	}
	if rec.PropertyID != "" || rec.City != "" || len(rec.Features) != 0 {
		t.Errorf("expected empty optional fields, got %+v", rec)
	}
}

func TestParseListing_EmptyPageIsNotFound(t *testing.T) {
	t.Parallel()

	_, err := parseListing("https://onehousing.vn/ban-nha/gone", "<html><body><p>loading...</p></body></html>")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestParseListing_IgnoresMalformedJSONLD(t *testing.T) {
	t.Parallel()

	page := `<html><body>
		<h1 id="detail_title">Bán nhà</h1>
		<script type="application/ld+json">{not valid json</script>
		<script type="application/ld+json">
		{"@type":"BreadcrumbList","itemListElement":[{"position":2,"name":"Hồ Chí Minh"}]}
		</script>
	</body></html>`

	rec, err := parseListing("https://onehousing.vn/ban-nha/y", page)
	if err != nil {
		t.Fatalf("failed to parse page: %v", err)
	}
	if rec.City != "Hồ Chí Minh" {
		t.Errorf("expected the valid JSON-LD block to win, got city %q", rec.City)
	}
	if rec.District != "" {
		t.Errorf("expected empty district, got %q", rec.District)
	}
}
