package constant

import (
	"fmt"
	"strings"

	"legal-aid-be/pkg/notice"
)

const (
	NoticePersonaV1 = "Consider yourself as a qualified legal professional, and an expert in responding to legal notices."

	NoticeClassificationPromptV1 = `Analyze this legal notice: %s
and determine whether it is a summon notice from a court or not. Return 'true' if it is a summon notice, and 'false' if it is not. Provide no additional information.`

	NoticeReasonsPromptV1 = `Analyze the given summon notice carefully: %s
and generate a list of the top 10 valid, polite justifications to respond efficiently to the notice. Each reason should address the specific date and requirements mentioned in the notice.

Instructions:
- Understand the context of the notice, such as official/legal inquiry, personal appearance requests, or document submissions.
- Extract the appearance date and purpose of the summon from the notice (e.g., giving evidence, producing documents) and use them in generating the justifications.
- Provide realistic and polite reasons appropriate for official communication (e.g., emergencies, scheduling conflicts, legal counsel requirements).
- Offer solutions where applicable, such as requesting a virtual appearance, sending a representative, or rescheduling.

Constraints:
- Use first-person tone (starting with "I").
- Keep the tone professional and respectful.
- Avoid vague excuses; focus on realistic scenarios (e.g., emergencies, travel commitments).
- Output exactly 10 reasons, one per line, not numbered, with no text before or after the list.`

	NoticeQuestionsPromptV1 = `Analyze this legal notice: %s
Now list only the relevant questions you require to generate an appropriate reply for the notice. There must be no introductory text or conclusion.
The questions should not be numbered, each question should start on a new line and end with a question mark, and there should be only 1 to 3 questions. If more questions are necessary, combine them to stay within the range.`

	NoticeAnswersPromptV1 = `Analyze the provided legal notice thoroughly and generate clear, accurate, and legally sound answers for each of the questions listed below, which are necessary to formulate a proper reply to the notice.

Legal Notice Text:
%s

Questions:
%s

Instructions:
- Address the key facts and legal arguments raised in the notice. Keep the answers short and to the point.
- List only the answers, in the same order as the questions. No introduction, no supporting lines, and do not repeat the questions.
- The answers should not be numbered, and each answer should start on a new line.`

	NoticeDraftPromptV1 = `Analyze this legal notice and generate an appropriate, properly formatted reply for the notice:
%s

Please ensure the following aspects are covered while generating the reply:
- Analyze the content of the legal notice thoroughly to understand the subject matter and the details of both the sender and receiver.
- Address the key facts and legal points mentioned in the notice to ensure an accurate, clear, and legally sound response.
- Ensure the reply is formally structured and well-organized, paying special attention to formatting and tone.
- The response must be about %d words, so elongate the response accordingly without adding anything irrelevant.
- Include relevant sections of the law in the reply if necessary to support the response.
- Use the current date for the letter: %s.
- The addresses for both sender and receiver should be clearly structured in several lines, as is typical in formal letters.
- At the end, ensure the signature and designation are on separate lines.

Additional Formatting Guidelines:
- The reply should have a formal letterhead, with the date placed in the correct position.
- Add proper salutation and sign-off sections.
- Ensure that legal terminology and references to the appropriate sections of the law are correctly used.

Must consider the following information carefully while generating the reply:
%s

The final document should be legally sound and focus on the key issues raised in the legal notice, including any defenses or proposals for resolution, while keeping a professional and respectful tone. There should be no additional statements or comments from you after the conclusion of the notice reply.`
)

// NoticePrompts renders the V1 prompt set.
type NoticePrompts struct{}

var _ notice.PromptBuilder = NoticePrompts{}

func (NoticePrompts) Persona() string { return NoticePersonaV1 }

func (NoticePrompts) Classification(noticeText string) string {
	return fmt.Sprintf(NoticeClassificationPromptV1, noticeText)
}

func (NoticePrompts) Reasons(noticeText string) string {
	return fmt.Sprintf(NoticeReasonsPromptV1, noticeText)
}

func (NoticePrompts) Questions(noticeText string) string {
	return fmt.Sprintf(NoticeQuestionsPromptV1, noticeText)
}

func (NoticePrompts) Answers(noticeText string, questions []string) string {
	return fmt.Sprintf(NoticeAnswersPromptV1, noticeText, strings.Join(questions, "\n"))
}

func (NoticePrompts) Draft(req notice.DraftRequest) string {
	var context string
	if req.IsSummon {
		context = fmt.Sprintf("Additional Information: %s\nExtra Text: %s", req.SelectedReason, req.ExtraNotes)
	} else {
		context = fmt.Sprintf("Questions and answers provided by the recipient:\n%s\n\nExtra Text: %s", req.Transcript, req.ExtraNotes)
	}
	return fmt.Sprintf(NoticeDraftPromptV1, req.NoticeText, req.WordCount, req.Date, context)
}
