package crossref

import (
	"encoding/xml"
	"fmt"
	"strings"
	"time"
)

const (
	schemaVersion   = "5.3.1"
	schemaNamespace = "http://www.crossref.org/schema/5.3.1"
	schemaLocation  = "http://www.crossref.org/schema/5.3.1 https://www.crossref.org/schemas/crossref5.3.1.xsd"
	jatsNamespace   = "http://www.ncbi.nlm.nih.gov/JATS1"
	xsiNamespace    = "http://www.w3.org/2001/XMLSchema-instance"
)

// Contributor 作者信息
type Contributor struct {
	Name        string
	ORCID       string
	Affiliation string
}

// Item 单条登记内容
type Item struct {
	DOI          string
	Title        string
	Abstract     string
	ContentType  string
	ResourceURL  string
	PostedAt     time.Time
	Contributors []Contributor
}

// Batch 一次提交批次
type Batch struct {
	ID        string
	Timestamp time.Time
	Items     []Item
}

type doiBatch struct {
	XMLName        xml.Name  `xml:"doi_batch"`
	Version        string    `xml:"version,attr"`
	Xmlns          string    `xml:"xmlns,attr"`
	XmlnsXSI       string    `xml:"xmlns:xsi,attr"`
	XmlnsJATS      string    `xml:"xmlns:jats,attr"`
	SchemaLocation string    `xml:"xsi:schemaLocation,attr"`
	Head           batchHead `xml:"head"`
	Body           batchBody `xml:"body"`
}

type batchHead struct {
	DOIBatchID string    `xml:"doi_batch_id"`
	Timestamp  string    `xml:"timestamp"`
	Depositor  depositor `xml:"depositor"`
	Registrant string    `xml:"registrant"`
}

type depositor struct {
	Name  string `xml:"depositor_name"`
	Email string `xml:"email_address"`
}

type batchBody struct {
	PostedContent []postedContent `xml:"posted_content"`
}

type postedContent struct {
	Type         string        `xml:"type,attr"`
	Contributors *contributors `xml:"contributors,omitempty"`
	Titles       titles        `xml:"titles"`
	PostedDate   postedDate    `xml:"posted_date"`
	Abstract     *jatsAbstract `xml:"jats:abstract,omitempty"`
	DOIData      doiData       `xml:"doi_data"`
}

type contributors struct {
	PersonName []personName `xml:"person_name"`
}

type personName struct {
	Sequence     string        `xml:"sequence,attr"`
	Role         string        `xml:"contributor_role,attr"`
	GivenName    string        `xml:"given_name,omitempty"`
	Surname      string        `xml:"surname"`
	Affiliations *affiliations `xml:"affiliations,omitempty"`
	ORCID        string        `xml:"ORCID,omitempty"`
}

type affiliations struct {
	Institution institution `xml:"institution"`
}

type institution struct {
	Name string `xml:"institution_name"`
}

type titles struct {
	Title string `xml:"title"`
}

type postedDate struct {
	Month int `xml:"month"`
	Day   int `xml:"day"`
	Year  int `xml:"year"`
}

type jatsAbstract struct {
	Paragraph string `xml:"jats:p"`
}

type doiData struct {
	DOI      string `xml:"doi"`
	Resource string `xml:"resource"`
}

// BuildDepositXML 生成 Crossref 5.3.1 doi_batch 提交文档
func BuildDepositXML(cfg *Config, batch Batch) ([]byte, error) {
	if cfg == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(batch.ID) == "" {
		return nil, fmt.Errorf("%w: batch id is required", ErrBatchInvalid)
	}
	if len(batch.Items) == 0 {
		return nil, fmt.Errorf("%w: batch has no items", ErrBatchInvalid)
	}
	timestamp := batch.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	doc := doiBatch{
		Version:        schemaVersion,
		Xmlns:          schemaNamespace,
		XmlnsXSI:       xsiNamespace,
		XmlnsJATS:      jatsNamespace,
		SchemaLocation: schemaLocation,
		Head: batchHead{
			DOIBatchID: batch.ID,
			// Crossref 要求 timestamp 单调递增，使用毫秒精度
			Timestamp: fmt.Sprintf("%d", timestamp.UnixMilli()),
			Depositor: depositor{
				Name:  cfg.DepositorName,
				Email: cfg.DepositorEmail,
			},
			Registrant: cfg.Registrant,
		},
	}

	for _, item := range batch.Items {
		if strings.TrimSpace(item.DOI) == "" || strings.TrimSpace(item.ResourceURL) == "" {
			return nil, fmt.Errorf("%w: doi and resource url are required", ErrBatchInvalid)
		}
		posted := item.PostedAt
		if posted.IsZero() {
			posted = timestamp
		}
		entry := postedContent{
			Type:   postedContentType(item.ContentType),
			Titles: titles{Title: strings.TrimSpace(item.Title)},
			PostedDate: postedDate{
				Month: int(posted.Month()),
				Day:   posted.Day(),
				Year:  posted.Year(),
			},
			DOIData: doiData{
				DOI:      item.DOI,
				Resource: item.ResourceURL,
			},
		}
		if abstract := strings.TrimSpace(item.Abstract); abstract != "" {
			entry.Abstract = &jatsAbstract{Paragraph: abstract}
		}
		if len(item.Contributors) > 0 {
			people := make([]personName, 0, len(item.Contributors))
			for idx, contributor := range item.Contributors {
				given, surname := SplitName(contributor.Name)
				if surname == "" {
					continue
				}
				person := personName{
					Sequence:  "additional",
					Role:      "author",
					GivenName: given,
					Surname:   surname,
					ORCID:     normalizeORCID(contributor.ORCID),
				}
				if idx == 0 {
					person.Sequence = "first"
				}
				if affiliation := strings.TrimSpace(contributor.Affiliation); affiliation != "" {
					person.Affiliations = &affiliations{Institution: institution{Name: affiliation}}
				}
				people = append(people, person)
			}
			if len(people) > 0 {
				entry.Contributors = &contributors{PersonName: people}
			}
		}
		doc.Body.PostedContent = append(doc.Body.PostedContent, entry)
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBatchInvalid, err)
	}
	return append([]byte(xml.Header), out...), nil
}

func postedContentType(contentType string) string {
	switch strings.ToUpper(strings.TrimSpace(contentType)) {
	case "CASE_STUDY", "TEACHING_NOTE":
		return "working_paper"
	case "ARTICLE":
		return "preprint"
	default:
		return "other"
	}
}

func normalizeORCID(orcid string) string {
	orcid = strings.TrimSpace(orcid)
	if orcid == "" {
		return ""
	}
	if strings.HasPrefix(orcid, "https://orcid.org/") {
		return orcid
	}
	return "https://orcid.org/" + strings.TrimPrefix(orcid, "http://orcid.org/")
}
