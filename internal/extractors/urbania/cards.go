package urbania

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/KKogaa/extracto-storage-service/internal/core/domain"
	"github.com/KKogaa/extracto-storage-service/internal/extractors/normalize"
)

// Card selectors, tried in order until one matches.
var cardSelectors = []string{
	`[data-qa="posting PROPERTY"]`,
	`div[data-posting-type]`,
	`div.postingCard`,
	`article.posting-card`,
}

const (
	priceSelector       = `[data-qa="POSTING_CARD_PRICE"], .postingCardPrice, .first-price`
	locationSelector    = `[data-qa="POSTING_CARD_LOCATION"], .postingCardLocation`
	addressSelector     = `.postingAddress, .postingCardLocationTitle`
	featuresSelector    = `[data-qa="POSTING_CARD_FEATURES"], .postingCardMainFeatures, .main-features`
	descriptionSelector = `[data-qa="POSTING_CARD_DESCRIPTION"], .postingCardDescription`
	titleSelector       = `h2, h3, .postingCardTitle`
)

func fromCards(html, url, jobID string) ([]domain.Listing, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	var cards *goquery.Selection
	for _, sel := range cardSelectors {
		if found := doc.Find(sel); found.Length() > 0 {
			cards = found
			break
		}
	}

	listings := []domain.Listing{}
	if cards == nil {
		return listings, nil
	}
	cards.Each(func(_ int, card *goquery.Selection) {
		if l, ok := cardToListing(card, url, jobID); ok {
			listings = append(listings, l)
		}
	})
	return listings, nil
}

func cardToListing(card *goquery.Selection, url, jobID string) (domain.Listing, bool) {
	id := attr(card, "data-id", "data-posting-id", "id")
	description := text(card.Find(descriptionSelector))
	title := text(card.Find(titleSelector))
	if title == "" {
		title = description
	}
	if id == "" || title == "" {
		return domain.Listing{}, false
	}

	href := attr(card, "data-to-posting", "data-url")
	if href == "" {
		href, _ = card.Find("a[href]").First().Attr("href")
	}

	l := normalize.NewListing(id, title, url, jobID, nil)
	l.Description = description
	l.URL = normalize.AbsoluteURL(url, href)

	priceText := text(card.Find(priceSelector).First())
	l.Price = domain.Price{
		Amount:   normalize.ParsePrice(priceText),
		Currency: normalize.CurrencyFromSymbol(priceText, defaultCurrency),
	}
	l.ListingType = normalize.ListingType(title, l.URL, url)

	l.Location = cardLocation(card)
	l.Features = normalize.FeaturesFromText(text(card.Find(featuresSelector)))

	card.Find("img").Each(func(_ int, img *goquery.Selection) {
		if src := attr(img, "data-src", "src"); src != "" {
			l.Images = append(l.Images, normalize.AbsoluteURL(url, src))
		}
	})

	l.Raw = domain.Extension{
		"priceText": priceText,
		"features":  text(card.Find(featuresSelector)),
	}
	return l, true
}

// cardLocation splits "Miraflores, Lima" into district and city.
func cardLocation(card *goquery.Selection) domain.Location {
	loc := domain.Location{Address: text(card.Find(addressSelector).First())}
	parts := strings.Split(text(card.Find(locationSelector).First()), ",")
	if len(parts) > 0 {
		loc.District = strings.TrimSpace(parts[0])
	}
	if len(parts) > 1 {
		loc.City = strings.TrimSpace(parts[len(parts)-1])
	}
	return loc
}

func attr(s *goquery.Selection, names ...string) string {
	for _, n := range names {
		if v, ok := s.Attr(n); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func text(s *goquery.Selection) string {
	return normalize.CollapseSpace(s.Text())
}
