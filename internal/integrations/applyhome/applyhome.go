package applyhome

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"

	"github.com/Dan9191/ziptalk-calculator/internal/config"
	"github.com/Dan9191/ziptalk-calculator/internal/models"
)

const (
	successCode = "00"
	pageSize    = 100
)

// Client fetches subscription competition results from the public data portal
type Client struct {
	url        string
	serviceKey string
	client     *http.Client
	log        *logrus.Logger
}

// NewClient initializes a new feed client
func NewClient(cfg *config.Config, log *logrus.Logger) *Client {
	return &Client{
		url:        cfg.ApplyhomeURL,
		serviceKey: cfg.ApplyhomeServiceKey,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		log: log,
	}
}

// buildRequest creates the GET request for the first result page
func (c *Client) buildRequest(ctx context.Context) (*http.Request, error) {
	u, err := url.Parse(c.url)
	if err != nil {
		return nil, fmt.Errorf("invalid feed url: %w", err)
	}
	q := u.Query()
	if c.serviceKey != "" {
		q.Set("serviceKey", c.serviceKey)
	}
	q.Set("pageNo", "1")
	q.Set("numOfRows", strconv.Itoa(pageSize))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")
	return req, nil
}

// sendRequest sends the request and returns the raw body
func (c *Client) sendRequest(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	c.log.Debugf("Feed XML response: %d bytes", len(body))
	return body, nil
}

// parseXMLResponse extracts apartments from the feed XML. Items with
// unreadable numbers are skipped.
func (c *Client) parseXMLResponse(rawBody []byte) ([]models.Apartment, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(rawBody); err != nil {
		return nil, fmt.Errorf("failed to parse XML: %w", err)
	}

	if code := doc.FindElement("//response/header/resultCode"); code != nil && strings.TrimSpace(code.Text()) != successCode {
		msg := ""
		if m := doc.FindElement("//response/header/resultMsg"); m != nil {
			msg = strings.TrimSpace(m.Text())
		}
		return nil, fmt.Errorf("feed returned error %s: %s", strings.TrimSpace(code.Text()), msg)
	}

	items := doc.FindElements("//response/body/items/item")
	apartments := make([]models.Apartment, 0, len(items))
	for i, item := range items {
		apt, err := parseItem(item)
		if err != nil {
			c.log.WithFields(logrus.Fields{"item": i, "error": err}).Debug("Skipping feed item")
			continue
		}
		apartments = append(apartments, apt)
	}
	return apartments, nil
}

func parseItem(item *etree.Element) (models.Apartment, error) {
	name := childText(item, "houseNm")
	location := childText(item, "hssplyAdres")
	if name == "" || location == "" {
		return models.Apartment{}, fmt.Errorf("missing name or address")
	}

	rate, err := childFloat(item, "cmpetRate")
	if err != nil {
		return models.Apartment{}, err
	}
	minScore, err := childFloat(item, "lwetScore")
	if err != nil {
		return models.Apartment{}, err
	}
	avgScore, err := childFloat(item, "avrgScore")
	if err != nil {
		return models.Apartment{}, err
	}
	lat, err := childFloat(item, "latitude")
	if err != nil {
		return models.Apartment{}, err
	}
	lng, err := childFloat(item, "longitude")
	if err != nil {
		return models.Apartment{}, err
	}

	return models.Apartment{
		Name:            name,
		Location:        location,
		CompetitionRate: rate,
		MinScore:        int(minScore),
		AvgScore:        int(avgScore),
		Coordinates:     models.Coordinates{Lat: lat, Lng: lng},
	}, nil
}

func childText(e *etree.Element, tag string) string {
	child := e.SelectElement(tag)
	if child == nil {
		return ""
	}
	return strings.TrimSpace(child.Text())
}

func childFloat(e *etree.Element, tag string) (float64, error) {
	text := childText(e, tag)
	// rates are published as "45.2" or "45.2:1"
	text = strings.TrimSuffix(text, ":1")
	text = strings.ReplaceAll(text, ",", "")
	v, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", tag, text)
	}
	return v, nil
}

// FetchCompetitionRates retrieves the latest competition results
func (c *Client) FetchCompetitionRates(ctx context.Context) ([]models.Apartment, error) {
	req, err := c.buildRequest(ctx)
	if err != nil {
		return nil, err
	}
	body, err := c.sendRequest(req)
	if err != nil {
		return nil, err
	}

	apartments, err := c.parseXMLResponse(body)
	if err != nil {
		return nil, err
	}

	c.log.Infof("Retrieved %d apartments from feed", len(apartments))
	return apartments, nil
}
