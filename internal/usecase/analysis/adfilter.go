package analysis

import (
	"strings"

	"truthlens/internal/domain/entity"
)

// adPatterns is commercial, marketing and ad-network vocabulary. Matching is
// plain substring search, so "sale" also hits "wholesale".
var adPatterns = []string{
	"sponsored", "advertisement", "promoted", "ad:", "[ad]", "(ad)",
	"buy now", "shop now", "order now", "get yours", "limited offer",
	"sale", "discount", "deal", "offer", "coupon", "promo",
	"click here", "learn more", "sign up", "subscribe now",
	"free trial", "best price", "lowest price", "save money",
	"product launch", "new product", "introducing", "now available",
	"affiliate", "referral", "partner content",
	"doubleclick", "googleads", "adservice", "advertising",
}

// IsAdvertisement reports whether any ad pattern occurs in the lower-cased
// title, description and URL.
func IsAdvertisement(title, description, url string) bool {
	text := strings.ToLower(title + " " + description + " " + url)
	for _, p := range adPatterns {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// FilterAds drops promotional articles, keeping at most limit of the rest in
// input order. limit <= 0 keeps all.
func FilterAds(articles []entity.Article, limit int) (kept []entity.Article, dropped int) {
	kept = make([]entity.Article, 0, len(articles))
	for _, a := range articles {
		if limit > 0 && len(kept) >= limit {
			break
		}
		if IsAdvertisement(a.Title, a.Description, a.URL) {
			dropped++
			continue
		}
		kept = append(kept, a)
	}
	return kept, dropped
}
