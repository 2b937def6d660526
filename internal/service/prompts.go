package service

import (
	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

const (
	summarizerPersona = "You are a helpful medical assistant."
	advisorPersona    = "You are a helpful assistant of a medical student for analyzing patient medical history and giving suggestion."
)

func newSummaryPrompt() prompt.ChatTemplate {
	return prompt.FromMessages(schema.FString,
		schema.SystemMessage(summarizerPersona),
		schema.UserMessage("Summarize the following medical history in paragraph form. Ignore all personal info:\n\n{history}"),
	)
}

func newSuggestionPrompt() prompt.ChatTemplate {
	return prompt.FromMessages(schema.FString,
		schema.SystemMessage(advisorPersona),
		schema.UserMessage(`You are given a patient's information.
Use it to provide a clear, structured, and helpful response.
suggest me medication for all the symptoms you think that patient have and specify which medication is for which symptom, And tell me which type of doctor should I approach

### Patient Medical History
{history_summarized}

### Current Problem
{user_prob}
Format the response clearly with headings and bullet points.

## Important: Give response in concise manner.
`),
	)
}

func newFollowUpPrompt() prompt.ChatTemplate {
	return prompt.FromMessages(schema.FString,
		schema.SystemMessage(advisorPersona),
		schema.UserMessage(`You have previously analyzed a patient's medical history and provided suggestions. Now the patient has a follow-up question.

### Previous Medical Analysis Context
{context}

### Patient's Follow-up Question
{user_question}

Please provide a helpful response based on the medical context. Maintain consistency with your previous analysis.
Keep your response clear, structured, and helpful. Always remind the patient to consult with healthcare professionals for medical decisions.

## Important: Give response in concise manner.
`),
	)
}
