package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"ETFBoard/internal/model"
)

const (
	DefaultBaseURL  = "https://apis.data.go.kr/1160100/service/GetSecuritiesProductInfoService"
	DefaultRelayURL = "https://corsproxy.io/?"
	DefaultPageSize = 1000

	searchRows = 100

	resultSuccess = "00"
	resultNoData  = "04"
)

// DataGoKrFetcher implements Fetcher using the public securities product
// price service, reached through a CORS relay.
type DataGoKrFetcher struct {
	BaseURL    string
	ServiceKey string
	// RelayURL is prefixed to the escaped target URL. Empty means direct.
	RelayURL string
	PageSize int
	// UseBaseDate sends the latest trading day as basDt.
	UseBaseDate bool
	Client      *http.Client
	Limiter     *rate.Limiter
	Now         func() time.Time
	Logger      *zap.Logger
}

// NewDataGoKrFetcher creates a new fetcher with optional proxy support.
func NewDataGoKrFetcher(baseURL, serviceKey, relayURL, proxyURL string, logger *zap.Logger) *DataGoKrFetcher {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DataGoKrFetcher{
		BaseURL:     strings.TrimRight(baseURL, "/"),
		ServiceKey:  serviceKey,
		RelayURL:    relayURL,
		PageSize:    DefaultPageSize,
		UseBaseDate: true,
		Client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		Now:    time.Now,
		Logger: logger,
	}
}

func (f *DataGoKrFetcher) Name() string { return "data.go.kr" }

// FetchTopRecords pages through the feed until count records are collected
// or the feed runs out. A "no data" answer yields an empty result.
func (f *DataGoKrFetcher) FetchTopRecords(ctx context.Context, count int) ([]model.SecurityRecord, error) {
	records := []model.SecurityRecord{}
	if count <= 0 {
		return records, nil
	}
	pageSize := f.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if count < pageSize {
		pageSize = count
	}

	for pageNo := 1; len(records) < count; pageNo++ {
		params := f.baseParams()
		params.Set("numOfRows", strconv.Itoa(pageSize))
		params.Set("pageNo", strconv.Itoa(pageNo))

		p, err := f.fetchPage(ctx, params)
		if err != nil {
			return nil, err
		}
		if p == nil {
			break
		}
		for _, it := range p.items {
			records = append(records, it.toRecord())
		}
		if len(p.items) < pageSize || (p.total > 0 && pageNo*pageSize >= p.total) {
			break
		}
	}

	if len(records) > count {
		records = records[:count]
	}
	return records, nil
}

// SearchByName queries the feed for names containing name.
func (f *DataGoKrFetcher) SearchByName(ctx context.Context, name string) ([]model.SecurityRecord, error) {
	params := f.baseParams()
	params.Set("likeItmsNm", name)
	params.Set("numOfRows", strconv.Itoa(searchRows))
	params.Set("pageNo", "1")

	p, err := f.fetchPage(ctx, params)
	if err != nil {
		return nil, err
	}
	records := []model.SecurityRecord{}
	if p == nil {
		return records, nil
	}
	for _, it := range p.items {
		records = append(records, it.toRecord())
	}
	return records, nil
}

func (f *DataGoKrFetcher) baseParams() url.Values {
	params := url.Values{}
	if f.UseBaseDate {
		now := time.Now
		if f.Now != nil {
			now = f.Now
		}
		basDt := FormatBaseDate(LatestTradingDay(now()))
		f.Logger.Debug("requesting base date", zap.String("basDt", basDt))
		params.Set("basDt", basDt)
	}
	return params
}

func (f *DataGoKrFetcher) buildURL(params url.Values) string {
	params.Set("serviceKey", f.ServiceKey)
	params.Set("resultType", "json")
	target := f.BaseURL + "/getETFPriceInfo?" + params.Encode()
	if f.RelayURL == "" {
		return target
	}
	return f.RelayURL + url.QueryEscape(target)
}

type page struct {
	items []wireItem
	total int
}

// fetchPage returns nil, nil when the feed has no data for the requested day.
func (f *DataGoKrFetcher) fetchPage(ctx context.Context, params url.Values) (*page, error) {
	if f.Limiter != nil {
		if err := f.Limiter.Wait(ctx); err != nil {
			return nil, &NetworkError{Op: "rate limit", Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.buildURL(params), nil)
	if err != nil {
		return nil, errors.Wrap(err, "build request")
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: "request", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Op: "read body", Err: err}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &NetworkError{Op: "request", Err: errors.Errorf("status %d, body: %s", resp.StatusCode, abbreviate(body))}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &NetworkError{Op: "decode", Err: err}
	}

	h := env.Response.Header
	switch h.ResultCode {
	case resultSuccess:
		return &page{items: env.Response.Body.Items, total: int(env.Response.Body.TotalCount.Int())}, nil
	case resultNoData:
		f.Logger.Warn("no market data for requested day", zap.String("resultMsg", h.ResultMsg))
		return nil, nil
	default:
		return nil, &UpstreamRejectedError{Code: h.ResultCode, Message: resultMessage(h.ResultCode, h.ResultMsg)}
	}
}

func abbreviate(body []byte) string {
	const limit = 200
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}

// envelope is the response structure of the price info service.
type envelope struct {
	Response struct {
		Header struct {
			ResultCode string `json:"resultCode"`
			ResultMsg  string `json:"resultMsg"`
		} `json:"header"`
		Body struct {
			NumOfRows  wireValue `json:"numOfRows"`
			PageNo     wireValue `json:"pageNo"`
			TotalCount wireValue `json:"totalCount"`
			Items      itemList  `json:"items"`
		} `json:"body"`
	} `json:"response"`
}

// wireItem is one fund row. Every field arrives as a string.
type wireItem struct {
	BasDt       wireValue `json:"basDt"`
	SrtnCd      wireValue `json:"srtnCd"`
	IsinCd      wireValue `json:"isinCd"`
	ItmsNm      wireValue `json:"itmsNm"`
	Clpr        wireValue `json:"clpr"`
	Vs          wireValue `json:"vs"`
	FltRt       wireValue `json:"fltRt"`
	Nav         wireValue `json:"nav"`
	Mkp         wireValue `json:"mkp"`
	Hipr        wireValue `json:"hipr"`
	Lopr        wireValue `json:"lopr"`
	Trqu        wireValue `json:"trqu"`
	TrPrc       wireValue `json:"trPrc"`
	MrktTotAmt  wireValue `json:"mrktTotAmt"`
	NPptTotAmt  wireValue `json:"nPptTotAmt"`
	StLstgCnt   wireValue `json:"stLstgCnt"`
	BssIdxIdxNm wireValue `json:"bssIdxIdxNm"`
	BssIdxClpr  wireValue `json:"bssIdxClpr"`
}

// toRecord maps a wire row. trPrc is ignored: the trading value is always
// derived from price and volume.
func (it wireItem) toRecord() model.SecurityRecord {
	r := model.SecurityRecord{
		Code:               string(it.SrtnCd),
		Name:               string(it.ItmsNm),
		Market:             model.MarketDomestic,
		Price:              it.Clpr.Float(),
		Volume:             it.Trqu.Int(),
		DailyChangePercent: it.FltRt.Float(),
		Fee:                0,
		Provider:           model.ProviderUnknown,
		Sector:             model.SectorUnknown,

		MarketCapitalization: model.Float(it.MrktTotAmt.Float()),
		NAVValue:             model.Float(it.Nav.Float()),
		HighPrice:            model.Float(it.Hipr.Float()),
		LowPrice:             model.Float(it.Lopr.Float()),
		OpenPrice:            model.Float(it.Mkp.Float()),
		PriceChange:          model.Float(it.Vs.Float()),
		NetAssetTotal:        model.Float(it.NPptTotAmt.Float()),
		ListedShares:         model.Int(it.StLstgCnt.Int()),
		BaseIndexName:        string(it.BssIdxIdxNm),
		ISIN:                 string(it.IsinCd),
		BaseDate:             string(it.BasDt),
	}
	return r.WithTradingValue()
}

// wireValue accepts a JSON string, number or null.
type wireValue string

func (v *wireValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = wireValue(strings.TrimSpace(s))
		return nil
	}
	*v = wireValue(data)
	return nil
}

// parse reads the value as a decimal; malformed input degrades to zero.
func (v wireValue) parse() decimal.Decimal {
	s := strings.ReplaceAll(strings.TrimSpace(string(v)), ",", "")
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func (v wireValue) Float() float64 { return v.parse().InexactFloat64() }

func (v wireValue) Int() int64 { return v.parse().IntPart() }

// itemList decodes body.items, which is either "", null, or an object whose
// "item" is an array or a single row.
type itemList []wireItem

func (l *itemList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		*l = nil
		return nil
	}
	var wrapper struct {
		Item json.RawMessage `json:"item"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return err
	}
	raw := bytes.TrimSpace(wrapper.Item)
	switch {
	case len(raw) == 0 || bytes.Equal(raw, []byte("null")):
		*l = nil
	case raw[0] == '[':
		var items []wireItem
		if err := json.Unmarshal(raw, &items); err != nil {
			return err
		}
		*l = items
	default:
		var one wireItem
		if err := json.Unmarshal(raw, &one); err != nil {
			return err
		}
		*l = itemList{one}
	}
	return nil
}
