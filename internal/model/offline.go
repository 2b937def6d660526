package model

import (
	"context"
	"fmt"
	"strings"

	einoModel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Markers the offline model looks for in the final user turn to tell the
// summarize, suggest and follow-up prompts apart.
const (
	offlineSummaryMarker  = "Summarize the following medical history"
	offlineProblemMarker  = "### Current Problem\n"
	offlineQuestionMarker = "### Patient's Follow-up Question\n"
	offlineSymptomsPrefix = "Original Symptoms: "
)

// offlineChatModel returns canned, deterministic answers so the service can
// run without credentials. It is not a medical model.
type offlineChatModel struct{}

func NewOfflineChatModel() einoModel.BaseChatModel {
	return offlineChatModel{}
}

func (offlineChatModel) Generate(ctx context.Context, messages []*schema.Message, _ ...einoModel.Option) (*schema.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var prompt string
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == schema.User {
			prompt = messages[i].Content
			break
		}
	}

	var reply string
	switch {
	case strings.Contains(prompt, offlineSummaryMarker):
		_, history, _ := strings.Cut(prompt, "\n\n")
		reply = fmt.Sprintf("Based on the uploaded medical document, the patient's history includes relevant "+
			"medical information. The document contains %d words of medical data.", len(strings.Fields(history)))
	case strings.Contains(prompt, offlineProblemMarker):
		reply = offlineSuggestion(section(prompt, offlineProblemMarker))
	case strings.Contains(prompt, offlineQuestionMarker):
		reply = offlineFollowUp(section(prompt, offlineQuestionMarker), line(prompt, offlineSymptomsPrefix))
	default:
		reply = "I can help with questions about the uploaded medical history. " +
			"Please consult a healthcare professional for medical decisions."
	}

	return schema.AssistantMessage(reply, nil), nil
}

func (m offlineChatModel) Stream(ctx context.Context, messages []*schema.Message, opts ...einoModel.Option) (*schema.StreamReader[*schema.Message], error) {
	msg, err := m.Generate(ctx, messages, opts...)
	if err != nil {
		return nil, err
	}
	return singleMessageStream(msg), nil
}

// section returns the text after marker up to the next blank line.
func section(prompt, marker string) string {
	_, rest, _ := strings.Cut(prompt, marker)
	text, _, _ := strings.Cut(rest, "\n\n")
	// The suggestion prompt continues directly with formatting instructions.
	text, _, _ = strings.Cut(text, "\nFormat the response")
	return strings.TrimSpace(text)
}

func line(prompt, prefix string) string {
	_, rest, found := strings.Cut(prompt, prefix)
	if !found {
		return ""
	}
	text, _, _ := strings.Cut(rest, "\n")
	return strings.TrimSpace(text)
}

func offlineSuggestion(symptoms string) string {
	return fmt.Sprintf(`Based on your symptoms: "%s" and medical history analysis:

RECOMMENDATIONS:
• General consultation with a primary care physician is recommended
• Monitor symptoms and maintain a symptom diary
• Consider basic diagnostic tests if symptoms persist
• Follow up with healthcare provider within 1-2 weeks

IMPORTANT NOTES:
• This is a demonstration analysis only
• Always consult with qualified healthcare professionals
• In case of emergency, contact medical services immediately
• Do not use this for actual medical decisions`, symptoms)
}

func offlineFollowUp(question, symptoms string) string {
	lower := strings.ToLower(question)
	switch {
	case strings.Contains(lower, "medication") || strings.Contains(lower, "medicine"):
		return fmt.Sprintf(`Based on your medical history and symptoms, here are some general medication considerations.

For your symptoms mentioned: "%s"
• Over-the-counter pain relievers for general discomfort
• Consult with a primary care physician for proper prescription
• Specialist referral may be needed based on specific symptoms

Always consult your healthcare provider before taking any medication.`, symptoms)
	case strings.Contains(lower, "doctor") || strings.Contains(lower, "specialist"):
		return fmt.Sprintf(`For symptoms: "%s"

Recommended healthcare providers:
• Primary Care Physician for initial evaluation
• Internal Medicine Specialist for comprehensive assessment
• Relevant specialists based on symptom severity

Bring your medical records and this analysis to the appointment.`, symptoms)
	case strings.Contains(lower, "diet") || strings.Contains(lower, "food") || strings.Contains(lower, "nutrition"):
		return fmt.Sprintf(`Dietary recommendations based on your medical context:
• Maintain a balanced diet with fruits and vegetables
• Stay hydrated with adequate water intake
• Limit processed foods and excessive sugar

Specific to your symptoms: "%s"
• Consult with a nutritionist for a personalized diet plan
• Keep a food diary to track symptom patterns`, symptoms)
	default:
		return fmt.Sprintf(`I understand your question: "%s"

Original symptoms: %s

For specific medical questions, I recommend:
• Consulting with your healthcare provider
• Scheduling a follow-up appointment
• Bringing your medical records for reference`, question, symptoms)
	}
}
