package announce

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"github.com/zipduck/subscription-assistant/internal/core/domain"
)

// Parser pulls structured subscription fields out of announcement text
// with a fixed set of patterns. Announcements follow the public-notice
// template loosely, so every extracted field carries its own confidence.
type Parser struct{}

func New() *Parser {
	return &Parser{}
}

var (
	nameRe       = regexp.MustCompile(`(?m)^[\s#*]*(.{2,60}?(?:아파트|주택|마을|뉴타운|스테이|캐슬|자이|푸르지오|힐스테이트))\s*(?:입주자\s*모집\s*공고|분양\s*공고|모집\s*공고)`)
	locationRe   = regexp.MustCompile(`(?:위치|소재지|대지위치)\s*[:：]?\s*([^\n]{4,80})`)
	developerRe  = regexp.MustCompile(`(?:시행자|사업주체|시공사)\s*[:：]?\s*([^\n]{2,60})`)
	supplyTypeRe = regexp.MustCompile(`(국민임대|공공임대|공공분양|민간분양|행복주택|신혼희망타운|장기전세)`)
	totalUnitsRe = regexp.MustCompile(`총\s*([\d,]+)\s*세대`)
	periodRe     = regexp.MustCompile(`(?:청약\s*접수|접수\s*기간|모집\s*기간)\s*[:：]?\s*(\d{4})[.\-/]\s*(\d{1,2})[.\-/]\s*(\d{1,2})\s*[~∼-]\s*(?:(\d{4})[.\-/])?\s*(\d{1,2})[.\-/]\s*(\d{1,2})`)
	priceRe      = regexp.MustCompile(`(?:분양가|공급금액|임대보증금)[^\n]*?((?:\d+억\s*)?[\d,]+\s*만\s*원|\d+억\s*원?)`)

	incomeRe       = regexp.MustCompile(`(?:월평균\s*소득|소득\s*기준|연\s*소득)[^\n]*?([\d,]+(?:억)?[\d,]*\s*만?\s*원|[\d]+\s*%)[^\n]*?이하`)
	assetRe        = regexp.MustCompile(`(?:총\s*자산|자산\s*기준|부동산\s*가액)[^\n]*?((?:\d+억\s*)?[\d,]+\s*만?\s*원|\d+억\s*원?)[^\n]*?이하`)
	ageRe          = regexp.MustCompile(`만\s*(\d{2})\s*세\s*이상`)
	subscriptionRe = regexp.MustCompile(`(?:청약\s*통장|주택청약종합저축|청약저축)[^\n]*?(?:가입[^\n]*?)?(\d+)\s*(개월|년)\s*(?:이상|경과)`)
	noHousingRe    = regexp.MustCompile(`무주택\s*(?:세대\s*구성원|세대주|기간)`)
	householdRe    = regexp.MustCompile(`(?:가구원|세대원)\s*(?:수)?\s*(\d+)\s*인\s*이상`)
	regionRe       = regexp.MustCompile(`(서울특별시|경기도|인천광역시|부산광역시|대구광역시|광주광역시|대전광역시|울산광역시|세종특별자치시)[^\n]*?(?:거주|거주자)`)
)

func (p *Parser) Parse(ctx context.Context, text string) (domain.ExtractedSubscription, error) {
	if err := ctx.Err(); err != nil {
		return domain.ExtractedSubscription{}, err
	}

	text = normalize(text)
	sub := domain.ExtractedSubscription{}
	matched := 0

	if m := nameRe.FindStringSubmatch(text); m != nil {
		sub.Name = strings.TrimSpace(m[1])
		matched++
	}
	if m := locationRe.FindStringSubmatch(text); m != nil {
		sub.Location = strings.TrimSpace(m[1])
		matched++
	}
	if m := developerRe.FindStringSubmatch(text); m != nil {
		sub.Developer = strings.TrimSpace(m[1])
		matched++
	}
	if m := supplyTypeRe.FindStringSubmatch(text); m != nil {
		sub.SupplyType = m[1]
		matched++
	}
	if m := totalUnitsRe.FindStringSubmatch(text); m != nil {
		sub.TotalUnits = parseGroupedInt(m[1])
		matched++
	}
	if m := periodRe.FindStringSubmatch(text); m != nil {
		sub.ApplicationStartDate = formatDate(m[1], m[2], m[3])
		endYear := m[4]
		if endYear == "" {
			endYear = m[1]
		}
		sub.ApplicationEndDate = formatDate(endYear, m[5], m[6])
		matched++
	}
	if prices := priceRe.FindAllStringSubmatch(text, -1); len(prices) > 0 {
		min, max := int64(0), int64(0)
		for _, m := range prices {
			won := parseKoreanAmount(m[1])
			if won <= 0 {
				continue
			}
			if min == 0 || won < min {
				min = won
			}
			if won > max {
				max = won
			}
		}
		if max > 0 {
			sub.MinPrice, sub.MaxPrice = min, max
			matched++
		}
	}

	sub.Requirements = p.parseRequirements(text)
	sub.Confidence = overallConfidence(matched, len(sub.Requirements))
	return sub, nil
}

func (p *Parser) parseRequirements(text string) []domain.ExtractedRequirement {
	var reqs []domain.ExtractedRequirement

	if m := incomeRe.FindStringSubmatch(text); m != nil {
		value := strings.TrimSpace(m[1])
		if won := parseKoreanAmount(value); won > 0 {
			value = strconv.FormatInt(won, 10)
		}
		reqs = append(reqs, domain.ExtractedRequirement{
			Category:    domain.CategoryIncome,
			Description: strings.TrimSpace(m[0]),
			Value:       value,
			Confidence:  confidenceForValue(value),
		})
	}
	if m := assetRe.FindStringSubmatch(text); m != nil {
		value := strings.TrimSpace(m[1])
		if won := parseKoreanAmount(value); won > 0 {
			value = strconv.FormatInt(won, 10)
		}
		reqs = append(reqs, domain.ExtractedRequirement{
			Category:    domain.CategoryAsset,
			Description: strings.TrimSpace(m[0]),
			Value:       value,
			Confidence:  confidenceForValue(value),
		})
	}
	if m := ageRe.FindStringSubmatch(text); m != nil {
		reqs = append(reqs, domain.ExtractedRequirement{
			Category:    domain.CategoryAge,
			Description: strings.TrimSpace(m[0]),
			Value:       m[1],
			Confidence:  90,
		})
	}
	if m := subscriptionRe.FindStringSubmatch(text); m != nil {
		months := parseGroupedInt(m[1])
		if m[2] == "년" {
			months *= 12
		}
		reqs = append(reqs, domain.ExtractedRequirement{
			Category:    domain.CategorySubscription,
			Description: strings.TrimSpace(m[0]),
			Value:       strconv.Itoa(months),
			Confidence:  85,
		})
	}
	if m := noHousingRe.FindStringSubmatch(text); m != nil {
		reqs = append(reqs, domain.ExtractedRequirement{
			Category:    domain.CategoryHousing,
			Description: strings.TrimSpace(m[0]),
			Value:       "0",
			Confidence:  85,
		})
	}
	if m := householdRe.FindStringSubmatch(text); m != nil {
		reqs = append(reqs, domain.ExtractedRequirement{
			Category:    domain.CategoryHousehold,
			Description: strings.TrimSpace(m[0]),
			Value:       m[1],
			Confidence:  80,
		})
	}
	if m := regionRe.FindStringSubmatch(text); m != nil {
		reqs = append(reqs, domain.ExtractedRequirement{
			Category:    domain.CategoryRegion,
			Description: strings.TrimSpace(m[0]),
			Value:       m[1],
			Confidence:  75,
		})
	}

	return reqs
}

func normalize(text string) string {
	text = strings.ReplaceAll(text, " ", " ")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return text
}

func formatDate(year, month, day string) string {
	m, _ := strconv.Atoi(month)
	d, _ := strconv.Atoi(day)
	var b strings.Builder
	b.WriteString(year)
	b.WriteByte('-')
	if m < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.Itoa(m))
	b.WriteByte('-')
	if d < 10 {
		b.WriteByte('0')
	}
	b.WriteString(strconv.Itoa(d))
	return b.String()
}

func parseGroupedInt(raw string) int {
	n, err := strconv.Atoi(strings.ReplaceAll(raw, ",", ""))
	if err != nil {
		return 0
	}
	return n
}

// parseKoreanAmount converts amounts like "3억 5,000만원" or "6,000만 원"
// into won. Percent values and unparseable strings return 0.
func parseKoreanAmount(raw string) int64 {
	raw = strings.TrimSpace(raw)
	if strings.HasSuffix(raw, "%") {
		return 0
	}
	raw = strings.ReplaceAll(raw, ",", "")
	raw = strings.ReplaceAll(raw, " ", "")
	raw = strings.TrimSuffix(raw, "원")

	var total int64
	if idx := strings.Index(raw, "억"); idx >= 0 {
		eok, err := strconv.ParseInt(raw[:idx], 10, 64)
		if err != nil {
			return 0
		}
		total += eok * 100_000_000
		raw = raw[idx+len("억"):]
	}
	if raw == "" {
		return total
	}
	if idx := strings.Index(raw, "만"); idx >= 0 {
		man, err := strconv.ParseInt(raw[:idx], 10, 64)
		if err != nil {
			return total
		}
		total += man * 10_000
		return total
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return total
	}
	return total + n
}

func confidenceForValue(value string) int {
	if _, err := strconv.ParseInt(value, 10, 64); err == nil {
		return 85
	}
	return 60
}

func overallConfidence(fieldMatches, requirementMatches int) int {
	score := fieldMatches*10 + requirementMatches*5
	if score > 95 {
		score = 95
	}
	return score
}
