// Package content holds the informational pages: about, contact details
// and FAQ, plus the contact form.
package content

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
)

var ErrInvalidMessage = errors.New("invalid contact message")

type Feature struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Source struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	URL         string `json:"url"`
}

type About struct {
	Tagline  string    `json:"tagline"`
	Mission  string    `json:"mission"`
	Features []Feature `json:"features"`
	Sources  []Source  `json:"sources"`
}

type FAQ struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type ContactInfo struct {
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Hours    string `json:"hours"`
	Address  string `json:"address"`
	Greeting string `json:"greeting"`
}

var about = About{
	Tagline: "Revolutionizing healthcare through personalized, data-driven medication recommendations.",
	Mission: "To create a world where everyone has access to safe, personalized medication recommendations based on their unique health profile and the latest medical research.",
	Features: []Feature{
		{"Advanced AI Analysis", "Our algorithm analyzes your symptoms, medical history, and current medications to identify potential treatment options. We consider factors like drug interactions, contraindications, and your unique health profile."},
		{"Trusted Medical Sources", "Our recommendations are based on data from reputable sources including clinical guidelines, peer-reviewed research, and authoritative medical databases. We regularly update our system to reflect the latest medical consensus."},
		{"Safety First Approach", "Patient safety is our top priority. We automatically flag potential drug interactions, side effects, and contraindications based on your personal health information and current medications."},
		{"Personalized Care", "We consider your age, gender, weight, allergies, and existing conditions to provide truly personalized recommendations, not generic advice. Your unique health profile guides our suggestions."},
	},
	Sources: []Source{
		{"Mayo Clinic", "Comprehensive medical information and clinical expertise", "https://www.mayoclinic.org/"},
		{"WebMD", "Trusted health and medication information resource", "https://www.webmd.com/"},
		{"Drugs.com", "Detailed medication information and interaction data", "https://www.drugs.com/"},
		{"NIH MedlinePlus", "Government-backed health information resource", "https://medlineplus.gov/"},
		{"FDA Medication Guides", "Official safety information for medications", "https://www.fda.gov/drugs/drug-safety-and-availability/medication-guides"},
		{"PubMed", "Database of peer-reviewed medical research", "https://pubmed.ncbi.nlm.nih.gov/"},
	},
}

var faqs = []FAQ{
	{
		"How accurate are the medication recommendations?",
		"Our recommendations are based on established medical guidelines and trusted data sources. However, they should not replace professional medical advice. Our system is designed to provide guidance that you can discuss with your healthcare provider.",
	},
	{
		"Is my personal health information secure?",
		"We take data security extremely seriously. Your health information is encrypted and processed securely. We do not store your personal health information beyond the current session unless you explicitly create an account and opt in to data storage.",
	},
	{
		"What sources do you use for drug information?",
		"We source our medication information from authoritative medical databases including the FDA, Mayo Clinic, WebMD, and peer-reviewed medical journals. Our database is regularly updated to ensure we're providing the most current information.",
	},
	{
		"How do I report a potential issue with a recommendation?",
		"If you believe there's an error or issue with a recommendation, please contact us immediately using the form on this page. Include the specific medications involved and the nature of your concern. Our medical team reviews all reported issues.",
	},
	{
		"Can I use this service for emergency medical situations?",
		"No. This service is not designed for emergency situations. If you're experiencing a medical emergency, please call your local emergency number (such as 911 in the US) or go to the nearest emergency room immediately.",
	},
	{
		"Do you offer personalized consultations with healthcare providers?",
		"Currently, we do not provide direct consultations with healthcare providers. Our service is designed to provide information that you can discuss with your own healthcare provider. We may add telemedicine features in the future.",
	},
}

var contact = ContactInfo{
	Email:    "support@medsage.com",
	Phone:    "+1 (800) 555-0123",
	Hours:    "Available Monday to Friday, 9am - 5pm EST",
	Address:  "123 Innovation Drive, Suite 400, San Francisco, CA 94103",
	Greeting: "Have questions about our medication recommendations or need assistance? We're here to help.",
}

// GetAbout returns a copy of the about page content.
func GetAbout() About {
	a := about
	a.Features = append([]Feature{}, about.Features...)
	a.Sources = append([]Source{}, about.Sources...)
	return a
}

func FAQs() []FAQ {
	return append([]FAQ{}, faqs...)
}

func Contact() ContactInfo {
	return contact
}

type ContactMessage struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// Normalize trims every field.
func (m *ContactMessage) Normalize() {
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	m.Subject = strings.TrimSpace(m.Subject)
	m.Message = strings.TrimSpace(m.Message)
}

func (m ContactMessage) Validate() error {
	for _, f := range []struct{ name, value string }{
		{"name", m.Name},
		{"email", m.Email},
		{"subject", m.Subject},
		{"message", m.Message},
	} {
		if f.value == "" {
			return fmt.Errorf("%w: %s is required", ErrInvalidMessage, f.name)
		}
	}
	addr, err := mail.ParseAddress(m.Email)
	if err != nil || addr.Address != m.Email {
		return fmt.Errorf("%w: email %q is not a valid address", ErrInvalidMessage, m.Email)
	}
	return nil
}

type Acknowledgement struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Acknowledge is what the sender sees once a valid message was accepted.
func Acknowledge() Acknowledgement {
	return Acknowledgement{
		Title:       "Message sent successfully",
		Description: "We'll get back to you as soon as possible.",
	}
}
